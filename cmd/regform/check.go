package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/regform/internal/errors"
	"github.com/vango-dev/regform/internal/registration"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <draft.json>",
		Short: "Validate a registration draft",
		Long: `Validate a registration draft against the form rules.

The draft is a JSON object keyed by field name. Use - to read it
from standard input. Every failing field is listed with the message
the form would show; the command fails if any field is invalid.

Examples:
  regform check draft.json
  cat draft.json | regform check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.New("E200").Wrap(err).
						WithSuggestion("Check that " + args[0] + " exists and is readable.")
				}
				defer f.Close()
				r = f
			}
			return checkDraft(r, cmd.OutOrStdout())
		},
	}
	return cmd
}

// checkDraft validates the JSON draft read from r and writes one line per
// failing field to w.
func checkDraft(r io.Reader, w io.Writer) error {
	var d registration.Draft
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return errors.New("E201").Wrap(err)
	}

	errs := registration.NewForm().Validate(d)
	if len(errs) == 0 {
		fmt.Fprintln(w, "draft is valid")
		return nil
	}

	for _, f := range registration.Fields {
		if msg, ok := errs[f.Name]; ok {
			fmt.Fprintf(w, "%-16s %s\n", f.Name+":", msg)
		}
	}
	return errors.New("E202").
		WithDetail(fmt.Sprintf("%d of %d fields failed validation.", len(errs), len(registration.Fields)))
}
