package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/kentwait/simnet"
)

func main() {
	numCPUPtr := flag.Int("threads", runtime.NumCPU(), "number of worker threads (overrides the config file's num_threads)")
	loggerType := flag.String("logger", "", "data recorder type (csv|sqlite); overrides the config file's logger_type")
	seedNum := flag.Int64("seed", -1, "random seed; overrides the config file's seed (-1 means use the config file value)")
	flag.Parse()

	configPath := flag.Arg(0)
	if configPath == "" {
		log.Fatal("usage: simnet [flags] <config.toml>")
	}

	conf, err := simnet.LoadRunConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	if *numCPUPtr > 0 {
		conf.SimParams.NumThreads = *numCPUPtr
	}
	if *loggerType != "" {
		conf.LogParams.LoggerType = *loggerType
	}
	if *seedNum >= 0 {
		conf.SimParams.Seed = *seedNum
	}

	firstStart := time.Now()
	for i := 1; i <= conf.NumInstances(); i++ {
		log.Printf("starting instance %03d\n", i)
		start := time.Now()

		modelCfg, err := conf.BuildModelConfig()
		if err != nil {
			log.Fatalf("building model for instance %03d: %s", i, err)
		}
		modelCfg.Seed = conf.SimParams.Seed + int64(i)

		var recorder simnet.Recorder
		var csvRecorder *simnet.CSVRecorder
		var sqliteRecorder *simnet.SQLiteRecorder
		switch conf.LoggerType() {
		case "csv":
			r, err := simnet.NewCSVRecorder(conf.LogPath(), i, 0)
			if err != nil {
				log.Fatalf("creating csv recorder: %s", err)
			}
			csvRecorder = r
			recorder = r
		case "sqlite":
			r, err := simnet.NewSQLiteRecorder(conf.LogPath(), i, 0)
			if err != nil {
				log.Fatalf("creating sqlite recorder: %s", err)
			}
			sqliteRecorder = r
			recorder = r
		default:
			log.Fatalf("%s is not a valid logger type (csv|sqlite)", conf.LoggerType())
		}
		modelCfg.Recorder = recorder

		model, err := simnet.NewModel(modelCfg)
		if err != nil {
			log.Fatalf("error building model for instance %03d: %s", i, err)
		}
		driver, err := simnet.NewDriver(model)
		if err != nil {
			log.Fatalf("error creating driver for instance %03d: %s", i, err)
		}

		result := driver.Run(context.Background())
		if result.Status != simnet.StatusOK {
			log.Printf("instance %03d ended with status %s: %v", i, result.Status, result.Err)
		}

		// Flush/close directly here rather than via defer: a deferred call
		// only runs when main() returns, and log.Fatalf below (or in a
		// later iteration) calls os.Exit and skips deferred functions
		// entirely, silently dropping buffered rows from every earlier
		// instance.
		if csvRecorder != nil {
			if err := csvRecorder.Flush(); err != nil {
				log.Printf("instance %03d: flushing csv recorder: %s", i, err)
			}
		}
		if sqliteRecorder != nil {
			if err := sqliteRecorder.Close(); err != nil {
				log.Printf("instance %03d: closing sqlite recorder: %s", i, err)
			}
		}

		log.Printf("finished instance %03d in %s\n", i, time.Since(start))
	}
	log.Printf("completed all runs in %s", time.Since(firstStart))
}
