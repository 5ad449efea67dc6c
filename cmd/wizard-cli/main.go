// Command wizard-cli walks a declarative wizard definition interactively,
// saving each section against an in-memory store. It exists to exercise the
// session flow end to end without a real backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/vendra/formwizard/pkg/testsupport"
	"github.com/vendra/formwizard/pkg/wizard"
)

const defaultDefinition = `
fields:
  companyName: {server: company_name}
  vendorEmail: {server: vendor_email}
  controlledItems: {server: controlled_items, kind: tristate}
  endUseMarket: {server: end_use_market, kind: list}
  businessLicense: {server: business_license, kind: file}
sections:
  - id: company
    name: Company details
    fields: [companyName, vendorEmail]
    required: [companyName]
    patterns:
      - field: vendorEmail
        pattern: "^[^@\\s]+@[^@\\s]+$"
        message: vendorEmail must be an email address
  - id: compliance
    name: Compliance
    fields: [controlledItems, endUseMarket]
    required: [controlledItems]
    when:
      - field: controlledItems
        equals: "yes"
        require: [endUseMarket]
  - id: documents
    name: Documents
    fields: [businessLicense]
    required: [businessLicense]
`

func main() {
	definitionPath := flag.String("definition", "", "wizard definition YAML (built-in onboarding flow if empty)")
	verbose := flag.Bool("verbose", false, "log session events")
	flag.Parse()

	data := []byte(defaultDefinition)
	if *definitionPath != "" {
		loaded, err := os.ReadFile(*definitionPath)
		if err != nil {
			log.Fatalf("read definition: %v", err)
		}
		data = loaded
	}

	cfg, err := wizard.ParseYAML(data)
	if err != nil {
		log.Fatalf("parse definition: %v", err)
	}

	opts := []wizard.Option{wizard.WithMapping(cfg.Mapping)}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		defer func() { _ = logger.Sync() }()
		opts = append(opts, wizard.WithLogger(logger))
	}

	store := testsupport.NewMemStore()
	session, err := wizard.NewSession(cfg.Definition, store, testsupport.NewRecorderUploader(), opts...)
	if err != nil {
		log.Fatalf("new session: %v", err)
	}

	ctx := context.Background()
	for !session.Completed() {
		sec := session.CurrentSection()
		fmt.Printf("\n== %s ==\n", sec.DisplayName)

		if err := promptSection(session, cfg.Mapping, sec); err != nil {
			log.Fatalf("prompt: %v", err)
		}

		err := session.SaveCurrentSection(ctx)
		var validationErr *wizard.ValidationError
		switch {
		case errors.As(err, &validationErr):
			fmt.Println("please fix the following fields:")
			for field, msg := range validationErr.Result.FieldErrors {
				fmt.Printf("  %s: %s\n", field, msg)
			}
		case err != nil:
			log.Fatalf("save %s: %v", sec.ID, err)
		}
	}

	state := session.GetState()
	entity, ok := store.Entity(state.EntityID)
	if !ok {
		log.Fatalf("entity %q missing from store", state.EntityID)
	}

	out, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		log.Fatalf("marshal entity: %v", err)
	}
	fmt.Printf("\nwizard completed, entity %s:\n%s\n", state.EntityID, out)
}
