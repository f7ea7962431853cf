package main

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/services/export"
)

// Export kinds
const (
	exportBundle = "bundle"
	exportCSV    = "csv"
)

var nowFunc = time.Now // mockable

func (cli *commandLine) export(pwd, out, kind, mailTo string) error {
	shared, err := core.NewSharedPassword(cli.conf.ExportPassword)
	if err != nil {
		return err
	}
	if !shared.Check(pwd) {
		return errWrongPassword
	}

	var to *mail.Address
	if mailTo != "" {
		if to, err = mail.ParseAddress(mailTo); err != nil {
			return errors.Wrap(err, "parsing -mailto")
		}
	}

	responses, err := cli.svc.Responses(context.Background())
	if err != nil {
		return err
	}

	now := nowFunc()
	var buf bytes.Buffer
	if kind == exportCSV {
		err = export.WriteResponses(&buf, responses)
	} else {
		err = export.WriteBundle(&buf, responses, cli.svc.Catalog(), now)
	}
	if err != nil {
		return errors.Wrap(err, "writing export")
	}

	if err = os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "writing export file")
	}
	_, _ = fmt.Fprintf(cli.out, "Exported %d responses to %s\n", len(responses), out)

	if to != nil {
		newMessage := export.NewBundleMessage
		if kind == exportCSV {
			newMessage = export.NewResponsesMessage
		}
		msg, err := newMessage(*to, buf.Bytes(), len(responses), cli.svc.Catalog(), now)
		if err != nil {
			return errors.Wrap(err, "attaching export")
		}
		cli.mailSvc.SendMessages(msg)
		_, _ = fmt.Fprintf(cli.out, "Emailed to %s\n", to.Address)
	}
	return nil
}
