package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coa2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  parse      Validate pasted spreadsheet rows and list the records")
	fmt.Fprintln(w, "  export     Render every record and pack the PDFs into a ZIP archive")
	fmt.Fprintln(w, "  render     Render one record to PDF or HTML")
	fmt.Fprintln(w, "  serve      Run the HTTP export service")
	fmt.Fprintln(w, "  archives   List, download or remove archives kept in the sink")
	fmt.Fprintln(w, "  doctor     Check system configuration for PDF generation")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'coa2pdf help <command>' for details on a specific command.")
}

func printInputHelp(w io.Writer) {
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Tab-separated rows (11 columns), a JSON array of COAs,")
	fmt.Fprintln(w, "           or \"-\" for stdin")
	fmt.Fprintln(w)
}

func printCommonHelp(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed logs")
}

func printRenderHelp(w io.Writer) {
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --certified-by <s>    Signatory printed on every certificate")
	fmt.Fprintln(w, "      --project <s>         Project name")
	fmt.Fprintln(w, "      --no-images           Leave gel image slots as placeholders")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
}

// printParseUsage prints usage for the parse command.
func printParseUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coa2pdf parse <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validate tab-separated rows and list the resulting records.")
	fmt.Fprintln(w)
	printInputHelp(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print records as JSON")
	fmt.Fprintln(w, "      --start <n>           First identifier to assign (default 1)")
	fmt.Fprintln(w)
	printCommonHelp(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coa2pdf export <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every record and pack the PDFs into one ZIP archive.")
	fmt.Fprintln(w)
	printInputHelp(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Archive path (default COAs_Export_<date>.zip)")
	fmt.Fprintln(w, "      --upload              Also store the archive in the configured sink")
	fmt.Fprintln(w, "      --allow-missing-images Export records still waiting for gel images")
	fmt.Fprintln(w)
	printRenderHelp(w)
	printCommonHelp(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coa2pdf render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one record to PDF, or to HTML with --html.")
	fmt.Fprintln(w)
	printInputHelp(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default COA_<order>_<ms>.pdf)")
	fmt.Fprintln(w, "  -n, --index <n>           1-based record to render (default 1)")
	fmt.Fprintln(w, "      --html                Write the HTML document instead")
	fmt.Fprintln(w)
	printRenderHelp(w)
	printCommonHelp(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coa2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP export service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /export              Batch export as ZIP")
	fmt.Fprintln(w, "  POST /export/single       One certificate as PDF")
	fmt.Fprintln(w, "  POST /export/preview      One certificate as preview PDF")
	fmt.Fprintln(w, "  POST /ingest              Parse tab-separated rows")
	fmt.Fprintln(w, "  GET  /archives            List stored archives (?prefix=)")
	fmt.Fprintln(w, "  GET  /archives/<key>      Download a stored archive (HEAD for metadata)")
	fmt.Fprintln(w, "  DELETE /archives/<key>    Remove a stored archive")
	fmt.Fprintln(w, "  GET  /healthz, /metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "  -w, --concurrency <n>     Simultaneous exports (0 = auto)")
	fmt.Fprintln(w)
	printCommonHelp(w)
}

// printArchivesUsage prints usage for the archives command.
func printArchivesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coa2pdf archives <list|get|rm> [args] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Work with export archives kept in the configured sink.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Actions:")
	fmt.Fprintln(w, "  list [prefix]             List archives (default: sink prefix)")
	fmt.Fprintln(w, "  get <key>                 Download one archive")
	fmt.Fprintln(w, "  rm <key>...               Remove archives")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print the listing as JSON")
	fmt.Fprintln(w, "  -o, --output <path>       Download path (default: stored file name)")
	fmt.Fprintln(w)
	printCommonHelp(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coa2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, container and archive sink configuration.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON for CI")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "parse":
		printParseUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "archives":
		printArchivesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: coa2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: coa2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
