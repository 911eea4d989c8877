package constants

// General

const (
	AppName                       = "addrsync"
	EnvVarPrefix                  = "ADDRSYNC" // prefix for environment variables that override CLI flags
	TimeFormatLog                 = "2006-01-02 15:04:05"
	TimeFormatSourceValue         = "2006-01-02 15:04:05" // how source DATE/TIMESTAMP cells are rendered as text
	StatsDumpFrequencySeconds     = 0                     // 0 disables periodic stats output
	OracleConnectionDefaultParams = "prefetch_rows=500"
)

// Connections and drivers

const (
	ConnectionTypeOracle   = "oracle"
	ConnectionTypePostgres = "postgres"
	DriverOracleGoOra      = "oracle" // github.com/sijms/go-ora/v2
	DriverOracleOci8       = "oci8"   // github.com/relloyd/go-oci8, requires build tag oci8
	DriverPostgresPgx      = "pgx"    // github.com/jackc/pgx/v5/stdlib
)

// Address sync

const (
	TargetSchemaDefault       = "public"
	TargetTableDefault        = "endereco"
	TableSyncBatchSizeDefault = 1000
	LogFileDefault            = "addrsync.log"
	LogLevelDefault           = "info"
	StepNameExtract           = "extract"
	StepNameLoad              = "load"
)
