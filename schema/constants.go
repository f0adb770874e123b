package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the storage backend for snapshots and run tracking.
	DatabaseBackend string

	// ProviderKind represents the source of commit listings.
	ProviderKind string

	// UserType is the internal/external label of a contributor.
	UserType string

	// ProjectCategory is the organizational category of a project.
	ProjectCategory string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ChartJSOut OutputMode = "chartjs"
	HTMLOut    OutputMode = "html"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	FileBackend       DatabaseBackend = "file" // default for snapshots
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	MongoBackend      DatabaseBackend = "mongodb"
	RedisBackend      DatabaseBackend = "redis"
	NoneBackend       DatabaseBackend = "none"
)

// All commit providers supported.
const (
	GitLabProvider ProviderKind = "gitlab" // default
	LocalProvider  ProviderKind = "local"
)

// Contributor labels. UnknownUser is never stored in the reference tables.
const (
	InternalUser UserType = "internal"
	ExternalUser UserType = "external"
	UnknownUser  UserType = "unknown"
)

// Project categories derived from the top-level namespace.
const (
	SchoolhouseProject ProjectCategory = "schoolhouse"
	OperationalProject ProjectCategory = "operational"
	PersonalProject    ProjectCategory = "personal"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ChartJSOut: {},
	HTMLOut:    {},
	ParquetOut: {},
}

// ValidSnapshotBackends lists all valid snapshot backends.
var ValidSnapshotBackends = map[DatabaseBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MongoBackend:      {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidRunBackends lists all valid run tracking backends.
var ValidRunBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviders lists all valid commit providers.
var ValidProviders = map[ProviderKind]struct{}{
	GitLabProvider: {},
	LocalProvider:  {},
}

// ValidLabeledUserTypes lists the labels allowed in the internal/external table.
var ValidLabeledUserTypes = map[UserType]struct{}{
	InternalUser: {},
	ExternalUser: {},
}
