// Command etcdkv-sandbox serves the in-memory mock key space over HTTP so
// applications can be exercised against the v2 keys API without a real
// store. Latency and failure injection make it usable for resilience
// testing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/linkorb/etcdkv-go/pkg/keyspace/mock"
)

type failConfig struct {
	rate float64
	code int
}

func main() {
	addr := flag.String("addr", ":2379", "listen address")
	seed := flag.String("seed", "", "path to a JSON object of key to value seed data")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	flag.Parse()

	ks := mock.New()
	if *seed != "" {
		values, err := loadSeed(*seed)
		if err != nil {
			log.Fatalf("load seed: %v", err)
		}
		if err := ks.Seed(values); err != nil {
			log.Fatalf("apply seed: %v", err)
		}
	}

	failCfg, err := parseFail(*fail)
	if err != nil {
		log.Fatalf("parse -fail: %v", err)
	}

	handler := http.Handler(ks)
	if *latency > 0 || failCfg != nil {
		handler = withChaos(handler, *latency, failCfg)
	}

	log.Printf("etcdkv sandbox listening on %s", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func withChaos(next http.Handler, latency time.Duration, fail *failConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if latency > 0 {
			time.Sleep(latency)
		}
		if fail != nil && rand.Float64() < fail.rate {
			http.Error(w, "injected failure", fail.code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loadSeed(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

func parseFail(raw string) (*failConfig, error) {
	if raw == "" {
		return nil, nil
	}
	cfg := &failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed segment %q", part)
		}
		switch kv[0] {
		case "rate":
			rate, err := strconv.ParseFloat(kv[1], 64)
			if err != nil {
				return nil, fmt.Errorf("rate: %w", err)
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(kv[1])
			if err != nil {
				return nil, fmt.Errorf("code: %w", err)
			}
			cfg.code = code
		default:
			return nil, fmt.Errorf("unknown segment %q", kv[0])
		}
	}
	return cfg, nil
}
