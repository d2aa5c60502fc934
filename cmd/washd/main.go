// Package main is washd, a little service wrapped around a compiled
// cleaning spec.
//
// It cleans single records over HTTP POST and over a websocket,
// serves the spec's documentation, optionally couples to an MQTT
// broker (records in on one topic, cleaned records out on another),
// and optionally sweeps a dump directory on a cron schedule.
//
//	washd -spec specs/datacite.yaml -http :8080
//	washd -spec specs/datacite.yaml -mqtt-broker tcp://localhost:1883
//	washd -spec specs/datacite.yaml -in dumps/ -out cleaned/ -cron '0 3 * * *'
package main

import (
	"context"
	"flag"
	"log"
	"runtime"

	"github.com/schemawash/schemawash/cleaners"
	"github.com/schemawash/schemawash/core"
	"github.com/schemawash/schemawash/util"
	"github.com/schemawash/schemawash/wash"

	_ "github.com/schemawash/schemawash/cleaners/ecmascript"
)

// Service holds the compiled spec and everything washd can do with
// it.  The spec is read-only after Compile, so the HTTP, websocket,
// and MQTT handlers share it without locking.
type Service struct {
	spec *core.Spec

	// washOpts is set when cron sweeps are configured.
	washOpts *wash.Options
}

func main() {
	var (
		specFile = flag.String("spec", "", "cleaning spec YAML file")
		table    = flag.String("table", "", "datasource.table to select when the spec file has several specs")

		httpAddr = flag.String("http", ":8080", "HTTP listen address")

		broker   = flag.String("mqtt-broker", "", "optional MQTT broker (e.g. tcp://localhost:1883)")
		clientId = flag.String("mqtt-id", "washd", "MQTT client id")
		topicIn  = flag.String("mqtt-topic-in", "records/raw", "MQTT topic for incoming records")
		topicOut = flag.String("mqtt-topic-out", "records/clean", "MQTT topic for cleaned records")
		qos      = flag.Int("mqtt-qos", 0, "MQTT QoS")

		inDir     = flag.String("in", "", "input directory for cron sweeps")
		outDir    = flag.String("out", "", "output directory for cron sweeps")
		cronLine  = flag.String("cron", "", "crontab schedule for directory sweeps")
		progress  = flag.String("progress", "", "optional BoltDB file for sweep progress")
		workers   = flag.Int("workers", runtime.NumCPU(), "files processed concurrently per sweep")
		keepNulls = flag.Bool("keep-nulls", true, "keep never-populated fields in deduced schemas")

		verbose = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()
	util.Logging = *verbose

	if *specFile == "" {
		flag.Usage()
		log.Fatal("need a spec (-spec)")
	}

	spec, err := loadSpec(*specFile, *table)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = spec.Compile(ctx, cleaners.Standard(), false); err != nil {
		log.Fatal(err)
	}
	util.Logf(`washd spec "%s": %d rules, %d filters`,
		spec.Id(), len(spec.Cleaners), len(spec.Filters))

	s := &Service{
		spec: spec,
	}

	if *cronLine != "" {
		if *inDir == "" || *outDir == "" {
			log.Fatal("-cron needs -in and -out")
		}
		s.washOpts = &wash.Options{
			InDir:     *inDir,
			OutDir:    *outDir,
			Workers:   *workers,
			KeepNulls: *keepNulls,
		}
		if *progress != "" {
			store := wash.NewBoltStore(*progress)
			if err = store.Open(); err != nil {
				log.Fatal(err)
			}
			defer store.Close()
			s.washOpts.Progress = store
		}
		go func() {
			if err := s.Sweeps(ctx, *cronLine); err != nil {
				log.Fatal(err)
			}
		}()
	}

	if *broker != "" {
		mq := &MQTTCoupling{
			Broker:   *broker,
			ClientId: *clientId,
			TopicIn:  *topicIn,
			TopicOut: *topicOut,
			QoS:      byte(*qos),
		}
		go func() {
			if err := mq.Run(ctx, s); err != nil {
				log.Fatal(err)
			}
		}()
	}

	if err = s.HTTP(ctx, *httpAddr); err != nil {
		log.Fatal(err)
	}
}

func loadSpec(filename, table string) (*core.Spec, error) {
	specs, err := core.LoadSpecs(filename)
	if err != nil {
		return nil, err
	}
	if table == "" && len(specs) == 1 {
		return specs[0], nil
	}
	for _, spec := range specs {
		if spec.Id() == table {
			return spec, nil
		}
	}
	return nil, &core.ConfigError{Spec: &core.Spec{}, Msg: "no usable spec in " + filename}
}
