// campuslink serves the student-network JSON API: users, per-user
// projects, profile and settings lookups, and the news feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campuslink/api"
	"campuslink/dblayer"
	"campuslink/docstore"
	"campuslink/hackernews"
	"campuslink/healthz"
	"campuslink/newsfeed"

	"cloud.google.com/go/firestore"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/api/option"
)

var (
	debugListen = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	apiListen   = flag.String("api-listen", "127.0.0.1:8000", "Server address:port for API endpoint.")

	dataProject     = flag.String("data-project", "", "GCP project that contains the application state.")
	credentialsFile = flag.String("credentials-file", "", "Service account key file for the data project.  If empty, Application Default Credentials are used.")

	hackerNewsHost = flag.String("hacker-news-host", "hacker-news.firebaseio.com", "Host of the Hacker News API used to seed the news feed.")
	maxNewsStories = flag.Int("max-news-stories", 30, "How many top stories each news load pass stores.")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 0.0001, "What ratio of traces should be exported?")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("api-listen: %v", *apiListen)
	glog.Infof("data-project: %v", *dataProject)
	glog.Infof("credentials-file: %v", *credentialsFile)
	glog.Infof("hacker-news-host: %v", *hackerNewsHost)
	glog.Infof("max-news-stories: %v", *maxNewsStories)
	glog.Infof("monitoring: %v", *monitoring)
	glog.Infof("monitoring-project: %v", *monitoringProject)
	glog.Infof("monitoring-trace-ratio: %v", *monitoringTraceRatio)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	if *monitoring {
		metricsOpts := []cloudmetrics.Option{}
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(*monitoringProject))
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			return fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
		}
		defer traceShutdown()

		pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
		if err != nil {
			return fmt.Errorf("while installing Cloud Metrics OpenTelemetry meter pipeline: %w", err)
		}
		defer pusher.Stop(ctx)
	}

	clientOpts := []option.ClientOption{}
	if *credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(*credentialsFile))
	}

	fstore, err := firestore.NewClient(ctx, *dataProject, clientOpts...)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}

	store := docstore.NewFirestore(fstore)
	db := dblayer.New(store)
	hn := hackernews.New(&http.Client{}, *hackerNewsHost)
	loader := newsfeed.New(hn, store, newsfeed.WithMaxStories(*maxNewsStories))

	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", healthz.New())
	debugServeMux.Handle("/readyz", healthz.New())
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	a := api.New(db, loader)
	apiServeMux := http.NewServeMux()
	apiServer := &http.Server{
		Addr:    *apiListen,
		Handler: apiServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	a.Register(apiServeMux)

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()

	go func() {
		if err := apiServer.ListenAndServe(); err != nil {
			glog.Fatalf("API server died: %v", err)
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	glog.Flush()

	return nil
}
