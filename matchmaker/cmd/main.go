package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"runtime/pprof"
	"sync"
	"syscall"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/scusemua/cloud-matchmaker/common/configuration"
	"github.com/scusemua/cloud-matchmaker/common/consul"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/constraint"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/metasolver"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/model"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/quota"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/solver"
	"github.com/scusemua/cloud-matchmaker/common/metrics"
	"github.com/scusemua/cloud-matchmaker/common/utils"
	"github.com/scusemua/cloud-matchmaker/matchmaker/internal/server"
)

const (
	ServiceName = "matchmaker"
)

var (
	options      = configuration.MatchmakerOptions{}
	globalLogger = config.GetLogger("")
	sig          = make(chan os.Signal, 1)
)

func init() {
	lipgloss.SetColorProfile(termenv.ANSI256)

	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGABRT)

	// Set default options.
	options = *configuration.DefaultMatchmakerOptions()
}

// ValidateOptions ensures that the options/configuration is valid.
func ValidateOptions() {
	flags, err := config.ValidateOptions(&options)
	if errors.Is(err, config.ErrPrintUsage) {
		flags.PrintDefaults()
		os.Exit(0)
	} else if err != nil {
		log.Fatal(err)
	}
}

// CreateModelGenerator creates the catalog source that is configured by the options, wrapped in a
// per-user cache.
func CreateModelGenerator(ctx context.Context, options *configuration.MatchmakerOptions) (matchmaking.ModelGenerator, error) {
	var generator matchmaking.ModelGenerator

	switch {
	case options.CatalogS3Bucket != "":
		s3Generator, err := model.NewS3Generator(ctx, options.CatalogS3Region, options.CatalogS3Bucket, options.CatalogS3Key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load the AWS configuration")
		}

		globalLogger.Info("Loading catalogs from s3://%s/%s", options.CatalogS3Bucket, options.CatalogS3Key)
		generator = s3Generator
	case options.CatalogFile != "":
		globalLogger.Info("Loading catalogs from %s", options.CatalogFile)
		generator = model.NewFileGenerator(options.CatalogFile)
	default:
		return nil, errors.New("either catalog_file or catalog_s3_bucket must be specified")
	}

	return model.NewCachedGenerator(generator, time.Duration(options.ModelCacheTTLMinutes)*time.Minute, options.ModelCacheSize), nil
}

// CreateReservationStore creates the store of the quota reservations that is configured by the options.
//
// The returned function closes the store.
func CreateReservationStore(ctx context.Context, options *configuration.MatchmakerOptions) (quota.ReservationStore, func(), error) {
	switch options.ReservationStore {
	case configuration.MemoryReservationStore, "":
		return quota.NewMemoryStoreWithTTL(options.ReservationTTL()), func() {}, nil
	case configuration.RedisReservationStore:
		store := quota.NewRedisStore(options.RedisAddr, options.RedisPassword, options.RedisDatabase, options.ReservationTTL())
		if err := store.Connect(ctx); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to connect to redis at %s", options.RedisAddr)
		}

		globalLogger.Info("Keeping reservations in redis at %s", options.RedisAddr)
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unknown reservation store \"%s\"", options.ReservationStore)
	}
}

func main() {
	defer finalize(false, "Main thread")

	var done sync.WaitGroup

	// Ensure that the options/configuration is valid.
	ValidateOptions()

	if options.PrettyPrintOptions {
		globalLogger.Info("Starting the Matchmaker with the following options:\n%s\n", options.PrettyString(2))
	} else {
		globalLogger.Info("Starting the Matchmaker.")
	}

	ctx := context.Background()

	models, err := CreateModelGenerator(ctx, &options)
	if err != nil {
		log.Fatalf("Failed to create the model generator: %v", err)
	}

	store, closeStore, err := CreateReservationStore(ctx, &options)
	if err != nil {
		log.Fatalf("Failed to create the reservation store: %v", err)
	}
	defer closeStore()

	evaluator, err := constraint.NewCelEvaluator()
	if err != nil {
		log.Fatalf("Failed to create the constraint evaluator: %v", err)
	}

	registry, err := solver.NewRegistryFromNames(utils.SplitList(options.Solvers), solver.Options{
		BestFitIterations: options.BestFitIterations,
		BestFitWidth:      options.BestFitWidth,
		EnumerationLimit:  options.EnumerationLimit,
		RandomSamples:     options.RandomSamples,
		Seed:              options.RandomSeed,
	})
	if err != nil {
		log.Fatalf("Failed to create the solver strategies: %v", err)
	}

	metasolverOptions := metasolver.Options{
		SolvingTime: time.Duration(options.SolvingTimeSeconds) * time.Second,
		Workers:     options.SolverWorkers,
	}

	var prometheusManager *metrics.MatchmakerPrometheusManager
	if options.PrometheusPort > 0 {
		prometheusManager = metrics.NewMatchmakerPrometheusManager(options.PrometheusPort)
		if err = prometheusManager.Start(); err != nil {
			log.Fatalf("Failed to start the Prometheus manager: %v", err)
		}
		metasolverOptions.Metrics = prometheusManager
	}

	metaSolver, err := metasolver.NewMetaSolver(models, evaluator, registry.Solvers(), quota.NewManager(store), metasolverOptions)
	if err != nil {
		log.Fatalf("Failed to create the metasolver: %v", err)
	}

	globalLogger.Info("Solving with strategies %v and a deadline of %d second(s).",
		metaSolver.Strategies(), options.SolvingTimeSeconds)

	matchmakerServer := server.NewServer(options.Port, metaSolver)

	serviceId := options.ServiceId
	if serviceId == "" {
		serviceId = uuid.NewString()
	}

	// Register services in consul
	var consulClient *consul.Client
	if options.ConsulAddr != "" {
		globalLogger.Info("Initializing consul agent [host: %v]...", options.ConsulAddr)
		consulClient, err = consul.NewClient(options.ConsulAddr)
		if err != nil {
			log.Fatalf("Got error while initializing consul agent: %v", err)
		}

		if err = consulClient.Register(ServiceName, serviceId, "", options.Port); err != nil {
			log.Fatalf("Failed to register in consul: %v", err)
		}
		globalLogger.Info("Successfully registered in consul")
	}

	// Start detecting stop signals
	done.Add(1)
	go func() {
		defer done.Done()

		<-sig
		globalLogger.Info("Shutting down...")

		if consulClient != nil {
			if err := consulClient.Deregister(serviceId); err != nil {
				globalLogger.Warn("Failed to deregister from consul: %v", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := matchmakerServer.Close(shutdownCtx); err != nil {
			globalLogger.Error("Failed to shut down the server: %v", err)
		}

		if prometheusManager != nil {
			_ = prometheusManager.Stop()
		}
	}()

	go func() {
		defer finalize(true, "Matchmaker Server")
		if serveErr := matchmakerServer.Serve(); serveErr != nil {
			globalLogger.Error(utils.RedStyle.Render("Error on serving matchmaker requests: %v"), serveErr)
			panic(serveErr)
		}
	}()

	done.Wait()
}

func finalize(fix bool, identity string) {
	if !fix {
		return
	}

	log.Printf("[WARNING] Finalize called with fix=%v and identity=\"%s\"\n", fix, identity)

	if err := recover(); err != nil {
		globalLogger.Error("Called recover() and retrieved the following error: %v", err)
	}

	globalLogger.Error("Stack trace of CURRENT goroutine:")
	debug.PrintStack()

	globalLogger.Error("Stack traces of ALL active goroutines:")
	err := pprof.Lookup("goroutine").WriteTo(os.Stdout, 1)
	if err != nil {
		globalLogger.Error("Failed to output call stacks of all active goroutines: %v", err)
	}

	sig <- syscall.SIGINT
}
