package configuration

import (
	"strings"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/goccy/go-json"
)

const (
	MemoryReservationStore = "memory"
	RedisReservationStore  = "redis"
)

// MatchmakerOptions includes all configuration parameters of the matchmaker service.
type MatchmakerOptions struct {
	config.LoggerOptions `yaml:",inline" json:"logger_options"`

	Port               int    `name:"port"                    json:"port"                    yaml:"port"                    description:"Port on which the matchmaker serves the node candidate and solve requests."`
	PrometheusPort     int    `name:"prometheus_port"         json:"prometheus_port"         yaml:"prometheus_port"         description:"The port on which the matchmaker serves Prometheus metrics. Zero or less disables metrics. Default/suggested: 8089."`
	SolvingTimeSeconds int    `name:"solving_time_seconds"    json:"solving_time_seconds"    yaml:"solving_time_seconds"    description:"The deadline, in seconds, that is shared by every solver strategy of a solve."`
	SolverWorkers      int    `name:"solver_workers"          json:"solver_workers"          yaml:"solver_workers"          description:"The maximum number of solver strategies that run at the same time. Zero means one per strategy."`
	Solvers            string `name:"solvers"                 json:"solvers"                 yaml:"solvers"                 description:"Comma-separated list of the solver strategies to run. Options are 'bestfit', 'enumeration', and 'random'."`
	BestFitIterations  int    `name:"bestfit_iterations"      json:"bestfit_iterations"      yaml:"bestfit_iterations"      description:"The maximum number of refinement iterations of the best-fit strategy."`
	BestFitWidth       int    `name:"bestfit_width"           json:"bestfit_width"           yaml:"bestfit_width"           description:"The number of solutions that the best-fit strategy keeps and refines."`
	EnumerationLimit   int    `name:"enumeration_limit"       json:"enumeration_limit"       yaml:"enumeration_limit"       description:"The maximum number of complete selections that the enumeration strategy visits."`
	RandomSamples      int    `name:"random_samples"          json:"random_samples"          yaml:"random_samples"          description:"The number of selections sampled by the random strategy."`
	RandomSeed         int64  `name:"random_seed"             json:"random_seed"             yaml:"random_seed"             description:"Seed of the randomized solver strategies."`

	CatalogFile          string `name:"catalog_file"            json:"catalog_file"            yaml:"catalog_file"            description:"Path of the YAML catalog document. May contain '{user}' to load a catalog per user."`
	CatalogS3Bucket      string `name:"catalog_s3_bucket"       json:"catalog_s3_bucket"       yaml:"catalog_s3_bucket"       description:"S3 bucket of the catalog documents. Takes precedence over catalog_file when set."`
	CatalogS3Key         string `name:"catalog_s3_key"          json:"catalog_s3_key"          yaml:"catalog_s3_key"          description:"S3 object key of the catalog document. May contain '{user}'."`
	CatalogS3Region      string `name:"catalog_s3_region"       json:"catalog_s3_region"       yaml:"catalog_s3_region"       description:"AWS region of the catalog bucket."`
	ModelCacheTTLMinutes int    `name:"model_cache_ttl_minutes" json:"model_cache_ttl_minutes" yaml:"model_cache_ttl_minutes" description:"How long, in minutes, an unused catalog stays cached."`
	ModelCacheSize       int    `name:"model_cache_size"        json:"model_cache_size"        yaml:"model_cache_size"        description:"The maximum number of cached catalogs."`

	ReservationStore      string `name:"reservation_store"       json:"reservation_store"       yaml:"reservation_store"       description:"Where quota reservations are kept. Options are 'memory' and 'redis'."`
	ReservationTTLMinutes int    `name:"reservation_ttl_minutes" json:"reservation_ttl_minutes" yaml:"reservation_ttl_minutes" description:"How long, in minutes, the reservations of a user are kept after its last solve. Zero or less keeps them forever."`
	RedisAddr             string `name:"redis_addr"              json:"redis_addr"              yaml:"redis_addr"              description:"Address of the Redis server that stores the reservations."`
	RedisPassword         string `name:"redis_password"          json:"-"                       yaml:"redis_password"          description:"Password of the Redis server."`
	RedisDatabase         int    `name:"redis_db"                json:"redis_db"                yaml:"redis_db"                description:"Redis database number."`

	ConsulAddr string `name:"consul"     json:"consul"     yaml:"consul"     description:"Address of the Consul agent with which the matchmaker registers. Empty disables registration."`
	ServiceId  string `name:"service_id" json:"service_id" yaml:"service_id" description:"ID under which the matchmaker registers with Consul. Generated if empty."`

	// PrettyPrintOptions, when true, instructs the matchmaker's driver to pretty-print the
	// MatchmakerOptions struct when the program first begins running.
	PrettyPrintOptions bool `name:"pretty_print_options" json:"pretty_print_options" yaml:"pretty_print_options"`
}

// DefaultMatchmakerOptions returns the options that are used for every value that is not configured.
func DefaultMatchmakerOptions() *MatchmakerOptions {
	return &MatchmakerOptions{
		Port:                  8080,
		PrometheusPort:        8089,
		SolvingTimeSeconds:    60,
		Solvers:               "bestfit,enumeration,random",
		BestFitIterations:     100,
		BestFitWidth:          1,
		EnumerationLimit:      250000,
		RandomSamples:         2000,
		ModelCacheTTLMinutes:  10,
		ModelCacheSize:        128,
		ReservationStore:      MemoryReservationStore,
		ReservationTTLMinutes: 60,
		RedisAddr:             "localhost:6379",
	}
}

// PrettyString is the same as String, except that PrettyString calls json.MarshalIndent instead of json.Marshal.
func (opts *MatchmakerOptions) PrettyString(indentSize int) string {
	indentBuilder := strings.Builder{}
	for i := 0; i < indentSize; i++ {
		indentBuilder.WriteString(" ")
	}

	m, err := json.MarshalIndent(opts, "", indentBuilder.String())
	if err != nil {
		panic(err)
	}

	return string(m)
}

// ReservationTTL returns the expiry of the reservations of a user, or zero if they never expire.
func (opts *MatchmakerOptions) ReservationTTL() time.Duration {
	if opts.ReservationTTLMinutes <= 0 {
		return 0
	}

	return time.Duration(opts.ReservationTTLMinutes) * time.Minute
}

func (opts *MatchmakerOptions) Clone() *MatchmakerOptions {
	clone := *opts
	return &clone
}

func (opts *MatchmakerOptions) String() string {
	m, err := json.Marshal(opts)
	if err != nil {
		panic(err)
	}

	return string(m)
}
