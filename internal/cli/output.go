package cli

import (
	"encoding/json"
	"errors"
	"io"
)

// outputJSON writes v as indented JSON
func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// finish writes a response document. In JSON mode the document is written
// whether or not the request succeeded; otherwise render is called only on
// success. A failed request always returns errMsg as the error.
func (a *App) finish(w io.Writer, doc any, success bool, errMsg string, render func() string) error {
	if a.wantJSON(w) {
		if err := outputJSON(w, doc); err != nil {
			return err
		}
	} else if success {
		if _, err := io.WriteString(w, render()); err != nil {
			return err
		}
	}

	if !success {
		return errors.New(errMsg)
	}
	return nil
}
