package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Path to the rewrite configuration file (YAML)." type:"existingfile" optional:""`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check  CheckCmd  `cmd:"" help:"Rewrite shorthand directives and validate the resulting ledger."`
	Export ExportCmd `cmd:"" help:"Rewrite a ledger and write the expanded, formatted result."`
	Doctor DoctorCmd `cmd:"" help:"Check the environment: configuration, templates, mileage rates."`
	Watch  WatchCmd  `cmd:"" help:"Watch a ledger file and re-run check on changes."`
}
