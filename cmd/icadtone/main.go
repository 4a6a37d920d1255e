// Command icadtone runs the paging-tone detection engine, either as a
// one-shot CLI over a single audio clip ("detect") or as an HTTP/WebSocket
// service exposing the same engine to other processes ("serve").
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	icadtone "github.com/TheGreatCodeholio/icad-tone-detection"
	"github.com/TheGreatCodeholio/icad-tone-detection/audioio"
	"github.com/TheGreatCodeholio/icad-tone-detection/decoders"
	"github.com/TheGreatCodeholio/icad-tone-detection/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "detect":
		runDetect(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: icadtone <detect|serve> [flags]")
}

func runDetect(args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	input := fs.String("input", "", "path to an audio file to analyze")
	configFile := fs.String("config", "", "path to a YAML config file (defaults used if empty)")
	mdcDecoder := fs.String("mdc-decoder", "", "path to the external MDC1200/FleetSync decoder binary")
	dtmfDecoder := fs.String("dtmf-decoder", "", "path to the external DTMF decoder binary")
	debug := fs.Bool("debug", false, "write a compressed frame/group trace alongside the result")
	fs.Parse(args)

	if *input == "" {
		log.Fatal("detect: -input is required")
	}

	cfg := loadConfig(*configFile)
	cfg.Debug = cfg.Debug || *debug

	engine := &icadtone.Engine{
		Metrics: icadtone.NewMetrics(prometheus.NewRegistry()),
	}
	if *mdcDecoder != "" {
		engine.MDCSpawner = decoders.NewMDC(*mdcDecoder)
		cfg.DetectMDC = true
	}
	if *dtmfDecoder != "" {
		engine.DTMFSpawner = decoders.NewDTMF(*dtmfDecoder)
		cfg.DetectDTMF = true
	}
	if err := decoders.CheckAll(engine.MDCSpawner, engine.DTMFSpawner); err != nil {
		log.Fatalf("detect: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	samples, err := audioio.LoadFile(ctx, *input)
	if err != nil {
		log.Fatalf("detect: failed to load %s: %v", *input, icadtone.WrapAudioLoadError(err))
	}

	result, err := engine.Analyze(ctx, samples, cfg)
	if err != nil {
		log.Fatalf("detect: analysis failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("detect: failed to encode result: %v", err)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", ":8090", "HTTP listen address")
	configFile := fs.String("config", "", "path to a YAML config file (defaults used if empty)")
	mdcDecoder := fs.String("mdc-decoder", "", "path to the external MDC1200/FleetSync decoder binary")
	dtmfDecoder := fs.String("dtmf-decoder", "", "path to the external DTMF decoder binary")
	fs.Parse(args)

	cfg := loadConfig(*configFile)

	reg := prometheus.NewRegistry()
	engine := &icadtone.Engine{
		Metrics: icadtone.NewMetrics(reg),
		Stream:  stream.NewServer(),
	}
	if *mdcDecoder != "" {
		engine.MDCSpawner = decoders.NewMDC(*mdcDecoder)
	}
	if *dtmfDecoder != "" {
		engine.DTMFSpawner = decoders.NewDTMF(*dtmfDecoder)
	}

	if cfg.MQTT.Enabled {
		pub, err := icadtone.NewPublisher(cfg.MQTT)
		if err != nil {
			log.Printf("serve: MQTT publisher disabled: %v", err)
		} else {
			engine.Publisher = pub
			defer pub.Disconnect()
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws/detections", engine.Stream.Handler)
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		handleAnalyze(w, r, engine, cfg)
	})

	server := &http.Server{
		Addr:    *listen,
		Handler: mux,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("icadtone: shutting down")
		server.Close()
	}()

	log.Printf("icadtone: listening on %s", *listen)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("icadtone: server error: %v", err)
	}
	log.Println("icadtone: stopped")
}

// handleAnalyze accepts a raw audio body (WAV or any ffmpeg-supported
// container) and returns the detection result as JSON.
func handleAnalyze(w http.ResponseWriter, r *http.Request, engine *icadtone.Engine, cfg icadtone.Config) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	body := http.MaxBytesReader(w, r.Body, 64<<20)
	data, err := io.ReadAll(body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	samples, err := audioio.LoadBytes(ctx, data)
	if err != nil {
		wrapped := icadtone.WrapAudioLoadError(err)
		status := http.StatusUnprocessableEntity
		if wrapped.Kind == icadtone.KindExternalToolMissing {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, wrapped.Error(), status)
		return
	}

	result, err := engine.Analyze(ctx, samples, cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func loadConfig(path string) icadtone.Config {
	if path == "" {
		return icadtone.DefaultConfig()
	}
	cfg, err := icadtone.LoadConfigFile(path)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", path, err)
	}
	return cfg
}
