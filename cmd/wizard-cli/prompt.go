package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/vendra/formwizard/pkg/fieldmap"
	"github.com/vendra/formwizard/pkg/section"
	"github.com/vendra/formwizard/pkg/upload"
	"github.com/vendra/formwizard/pkg/wizard"
)

// promptSection asks for every field of the section in declaration order and
// stages the answers on the session. Blank answers leave the field unset so
// required-field validation can report them.
func promptSection(session *wizard.Session, mapping *fieldmap.Mapping, sec section.Definition) error {
	for _, field := range sec.FieldNames {
		switch mapping.KindOf(field) {
		case fieldmap.KindBool:
			var answer bool
			if err := survey.AskOne(&survey.Confirm{Message: field + "?"}, &answer); err != nil {
				return err
			}
			session.SetFieldValue(field, answer)

		case fieldmap.KindTriState:
			var answer string
			prompt := &survey.Select{
				Message: field,
				Options: []string{"yes", "no", "skip"},
			}
			if err := survey.AskOne(prompt, &answer); err != nil {
				return err
			}
			if answer != "skip" {
				session.SetFieldValue(field, answer)
			}

		case fieldmap.KindList:
			var answer string
			prompt := &survey.Input{Message: field + " (comma separated)"}
			if err := survey.AskOne(prompt, &answer); err != nil {
				return err
			}
			if items := splitList(answer); len(items) > 0 {
				session.SetFieldValue(field, items)
			}

		case fieldmap.KindDate:
			var answer string
			prompt := &survey.Input{Message: field + " (YYYY-MM-DD)"}
			if err := survey.AskOne(prompt, &answer); err != nil {
				return err
			}
			if answer == "" {
				continue
			}
			date, ok := fieldmap.ParseISODate(answer)
			if !ok {
				return fmt.Errorf("%s: %q is not a YYYY-MM-DD date", field, answer)
			}
			session.SetFieldValue(field, date)

		case fieldmap.KindFile:
			var path string
			prompt := &survey.Input{Message: field + " (file path)"}
			if err := survey.AskOne(prompt, &path); err != nil {
				return err
			}
			if path == "" {
				continue
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", field, err)
			}
			session.SetFile(field, upload.NewFile(upload.Handle{
				Name:    filepath.Base(path),
				Content: file,
			}))

		default:
			var answer string
			if err := survey.AskOne(&survey.Input{Message: field}, &answer); err != nil {
				return err
			}
			if answer != "" {
				session.SetFieldValue(field, answer)
			}
		}
	}
	return nil
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
