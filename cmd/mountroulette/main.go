// Mountroulette is a command line tool for managing mount groups and roulettes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/catalog"
	"github.com/ErikKalkoken/mountroulette/internal/app/configfile"
	"github.com/ErikKalkoken/mountroulette/internal/app/storage"
	"github.com/ErikKalkoken/mountroulette/internal/appdirs"
)

// defined flags
var (
	levelFlag     logLevelFlag
	logFileFlag   = flag.Bool("logfile", false, "Write logs to a file instead of the console")
	dbFlag        = flag.String("db", "", "Path to the database file. Uses the data directory when empty")
	configFlag    = flag.String("config", "", "Path to a YAML file for storing the configuration instead of the database")
	catalogFlag   = flag.String("catalog", "", "Path to a YAML file with the catalog of mounts")
	characterFlag = flag.Uint64("character", 0, "ID of the character to edit. Edits the global settings when 0")
	nameFlag      = flag.String("name", "", "Name of the character")
	worldFlag     = flag.String("world", "", "World of the character")
	yesFlag       = flag.Bool("yes", false, "Confirm all questions")
	showDirsFlag  = flag.Bool("show-dirs", false, "Show directories where user data is stored")
	uninstallFlag = flag.Bool("uninstall", false, "Deletes all user files")
)

func init() {
	levelFlag.value = slog.LevelWarn
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] COMMAND [ARGS]\n\n", os.Args[0])
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(run())
}

func run() int {
	slog.SetLogLoggerLevel(levelFlag.value)
	ad, err := appdirs.New()
	if err != nil {
		log.Fatal(err)
	}
	if *showDirsFlag {
		fmt.Printf("Database: %s\n", ad.Data)
		fmt.Printf("Logs: %s\n", ad.Log)
		return 0
	}
	if *uninstallFlag {
		fmt.Print("Are you sure you want to delete all user files (y/N)?")
		var input string
		fmt.Scanln(&input)
		if strings.ToLower(input) != "y" {
			fmt.Println("Aborted")
			return 0
		}
		if err := ad.DeleteAll(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("User files deleted")
		return 0
	}
	if *logFileFlag {
		log.SetOutput(&lumberjack.Logger{
			Filename:   ad.LogFile(),
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		})
	}
	releaser, err := acquireLock(5 * time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Another instance is using the data store: %s\n", err)
		return 1
	}
	defer releaser.Release()

	var st app.ConfigStore
	if *configFlag != "" {
		st = configfile.NewStore(*configFlag)
		slog.Info("Using config file", "path", *configFlag)
	} else {
		dsn := ad.DSN()
		if *dbFlag != "" {
			dsn = "file:" + *dbFlag
		}
		dbRW, dbRO, err := storage.InitDB(dsn)
		if err != nil {
			log.Fatalf("Failed to initialize database %s: %s", dsn, err)
		}
		defer dbRW.Close()
		defer dbRO.Close()
		st = storage.New(dbRW, dbRO)
	}

	cat := catalog.New(nil)
	if *catalogFlag != "" {
		cat, err = catalog.NewFromFile(*catalogFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	c := newCLI(st, cat, os.Stdin, os.Stdout)
	c.assumeYes = *yesFlag
	c.characterID = *characterFlag
	c.characterName = *nameFlag
	c.characterWorld = *worldFlag
	if err := c.run(context.Background(), flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		if errors.Is(err, errUsage) {
			flag.Usage()
			return 2
		}
		return 1
	}
	return 0
}
