package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/mudra/internal/analyze"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/emitter"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "camera device ID")
	vocabPath := flag.String("vocab", "", "vocabulary file (index,label per line)")
	statsPath := flag.String("stats", "", "normalization stats file (means line, scales line)")
	modelPath := flag.String("model", "", "classifier model weights (service default if empty)")
	dbPath := flag.String("db", "", "SQLite database path (default ~/.mudra/mudra.db)")
	motionThresh := flag.Float64("motion", 1.0, "motion threshold in percent pixel change")
	broker := flag.String("broker", "", "MQTT broker host (publishing disabled if empty)")
	brokerPort := flag.Int("broker-port", 1883, "MQTT broker port")
	topic := flag.String("topic", emitter.DefaultTopic, "MQTT topic for recognized signs")
	flag.Parse()

	fmt.Println("Mudra - Sign Language Recognition")

	// The vocabulary and normalization stats are mandatory; the analyzer
	// cannot run without them.
	vocab, err := analyze.LoadVocabularyFile(resolveResource(*vocabPath, "vocabulary.csv"))
	if err != nil {
		log.Fatalf("Failed to load vocabulary: %v", err)
	}
	norm, err := analyze.LoadNormalizationTableFile(resolveResource(*statsPath, "normalization.csv"))
	if err != nil {
		log.Fatalf("Failed to load normalization stats: %v", err)
	}

	st, err := store.New(resolveDBPath(*dbPath))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	extractor := newExtractor()
	defer extractor.Close()

	classifier := newClassifier(*modelPath)
	defer classifier.Close()

	analyzer, err := analyze.New(analyze.Config{
		Vocabulary:    vocab,
		Normalization: norm,
		Extractor:     extractor,
		Classifier:    classifier,
		Params:        analyze.DefaultParams(),
	})
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	if *broker != "" {
		em := emitter.New(emitter.Config{
			Broker: *broker,
			Port:   *brokerPort,
			Topic:  *topic,
		})
		if err := em.Connect(); err != nil {
			log.Printf("MQTT broker unavailable (%v), publishing disabled", err)
		} else {
			analyzer.Subscribe(em.OnOutput)
			defer em.Close()
		}
	}

	application := app.New(app.Config{
		Store:        st,
		Analyzer:     analyzer,
		CameraID:     *cameraID,
		MotionThresh: *motionThresh,
	})
	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start capture pipeline: %v", err)
	}
	defer application.Stop()

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Camera:     application.Camera(),
		Analyzer:   analyzer,
		Controller: application,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: *addr, Handler: srv}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// newExtractor tries the MediaPipe service first and falls back to the mock
// extractor so the rest of the system stays usable without Python installed.
func newExtractor() detector.Extractor {
	mp, err := detector.NewMediaPipeExtractor(detector.DefaultConfig())
	if err == nil {
		log.Println("Using MediaPipe landmark extraction")
		return mp
	}
	log.Printf("MediaPipe not available (%v), using mock extractor", err)
	return detector.NewMock()
}

// newClassifier tries the classifier service first and falls back to the mock.
func newClassifier(modelPath string) classify.Classifier {
	svc, err := classify.NewServiceClassifier(classify.Config{ModelPath: modelPath})
	if err == nil {
		log.Println("Using sign classifier service")
		return svc
	}
	log.Printf("Classifier service not available (%v), using mock classifier", err)
	return classify.NewMock()
}

// resolveResource returns the explicit path if given, otherwise searches
// common locations for the named resource file: "resources", "../resources",
// and ~/.mudra.
func resolveResource(explicit, name string) string {
	if explicit != "" {
		return explicit
	}

	candidates := []string{
		filepath.Join("resources", name),
		filepath.Join("..", "resources", name),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".mudra", name))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	// Fall back to the first candidate so the load error names a real path.
	return candidates[0]
}

// resolveDBPath returns the explicit path if given, otherwise ~/.mudra/mudra.db.
func resolveDBPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	return filepath.Join(dbDir, "mudra.db")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
