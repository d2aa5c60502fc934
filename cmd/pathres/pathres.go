// Package main is a little command-line utility to invoke path
// resolution.
//
//	pathres -r '{"creators":[{"name":"ada"},{"name":"grace"}]}' -p creators.name -w '["ada","grace"]'
//
// The record can also come from a JSON or YAML file via -f.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/schemawash/schemawash/core"
	"github.com/schemawash/schemawash/resolve"

	"github.com/jsccast/yaml"
)

func main() {
	var (
		recordJS = flag.String("r", "", "record in JSON")
		filename = flag.String("f", "", "record file (JSON, or YAML with a .yaml/.yml suffix)")
		pathStr  = flag.String("p", "", "path, segments joined with '.'")
		wantJS   = flag.String("w", "", "wanted values in JSON")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")

		record map[string]interface{}
		want   []interface{}
		wanted bool
	)

	flag.Parse()

	if *pathStr == "" {
		log.Fatal("need a path (-p)")
	}
	path := resolve.Path(strings.Split(*pathStr, "."))

	switch {
	case *recordJS != "":
		if err := json.Unmarshal([]byte(*recordJS), &record); err != nil {
			log.Fatal(err)
		}
	case *filename != "":
		bs, err := os.ReadFile(*filename)
		if err != nil {
			log.Fatal(err)
		}
		if strings.HasSuffix(*filename, ".yaml") || strings.HasSuffix(*filename, ".yml") {
			if err = yaml.Unmarshal(bs, &record); err != nil {
				log.Fatal(err)
			}
			x, err := core.StringMaps(record)
			if err != nil {
				log.Fatal(err)
			}
			record = x.(map[string]interface{})
		} else {
			if err = json.Unmarshal(bs, &record); err != nil {
				log.Fatal(err)
			}
		}
	default:
		log.Fatal("need a record (-r or -f)")
	}

	if *wantJS != "" {
		if err := json.Unmarshal([]byte(*wantJS), &want); err != nil {
			log.Fatal(err)
		}
		wanted = true
	}

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, err := resolve.Resolve(record, path); err != nil {
				log.Fatal(err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Resolve, %d mean bytes allocated per Resolve", *bench, meanNanos, allocated)
	}

	values, err := resolve.Values(record, path)
	if err != nil {
		log.Fatal(err)
	}

	if wanted {
		fmt.Printf("%v\n", reflect.DeepEqual(values, want))
		return
	}

	js, err := json.Marshal(&values)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", js)
}
