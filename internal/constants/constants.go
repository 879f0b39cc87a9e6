package constants

const (
	GCModeFull    = "full"
	GCModeArchive = "archive"

	DefaultGethExecutable = "geth"
	DefaultRPCAddr        = "127.0.0.1"
	DefaultRPCPort        = "8545"

	// NiceLevel is the niceness geth runs at when launch option "nice" is on.
	NiceLevel = "20"

	LockFilename = "geth-launch-config.lock"
	// ChaindataDir is where geth keeps its database once "geth init" has run.
	ChaindataDir = "geth/chaindata"
)

var ValidGCModes = []string{GCModeFull, GCModeArchive}
