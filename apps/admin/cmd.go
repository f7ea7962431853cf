package main

import (
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp          = errors.New("help provided")
	errWrongPassword = errors.New("wrong password")
)

type commandLine struct {
	conf    *core.Config
	svc     *feedback.Service
	mailSvc core.EmailService
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  summary - print the mean rating and the rating counts of each question")
	_, _ = fmt.Fprintln(cli.out, "  export -out FILE [-kind bundle|csv] [-mailto EMAIL] - export the responses (the password is prompted)")
	_, _ = fmt.Fprintln(cli.out, "  import -in FILE - append the responses of a CSV file to the store")
	_, _ = fmt.Fprintln(cli.out, "  migrate - create the responses table (SQL stores only)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCmd.SetOutput(cli.out)
	exportOut := exportCmd.String("out", "", "The file to write the export to.")
	exportKind := exportCmd.String("kind", exportBundle, "What to export: bundle (zip with summary & charts) or csv (responses only).")
	exportMailTo := exportCmd.String("mailto", "", "Also email the export to this address.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importCmd.SetOutput(cli.out)
	importIn := importCmd.String("in", "", "The CSV file to import, in the stored column layout (header optional).")

	switch args[1] {
	case "summary":
		return cli.summary()

	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportOut == "" || !(*exportKind == exportBundle || *exportKind == exportCSV) {
			exportCmd.Usage()
			return errHelp
		}
		_, _ = fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		_, _ = fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(string(pwd), *exportOut, *exportKind, *exportMailTo)

	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importIn == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importResponses(*importIn)

	case "migrate":
		return cli.migrate()

	default:
		cli.printUsage()
		return errHelp
	}
}
