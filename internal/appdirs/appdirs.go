// Package appdirs provides the local directories of the app.
package appdirs

import (
	"fmt"
	"os"
	"path/filepath"

	xappdirs "github.com/chasinglogic/appdirs"
)

const (
	appName     = "mountroulette"
	dbFileName  = "mountroulette.sqlite"
	logFileName = "mountroulette.log"
)

// AppDirs represents the app's local directories for storing data and logs.
type AppDirs struct {
	Data string
	Log  string
}

// New returns the app's directories and creates them if needed.
func New() (AppDirs, error) {
	ad := xappdirs.New(appName)
	x := AppDirs{
		Data: ad.UserData(),
		Log:  ad.UserLog(),
	}
	for _, p := range x.Folders() {
		if err := os.MkdirAll(p, os.ModePerm); err != nil {
			return x, err
		}
	}
	return x, nil
}

// Folders returns all folders.
func (ad AppDirs) Folders() []string {
	return []string{ad.Data, ad.Log}
}

// DSN returns the data source name of the database.
func (ad AppDirs) DSN() string {
	return fmt.Sprintf("file:%s", filepath.Join(ad.Data, dbFileName))
}

// LogFile returns the path of the log file.
func (ad AppDirs) LogFile() string {
	return filepath.Join(ad.Log, logFileName)
}

// DeleteAll deletes all folders with their content.
func (ad AppDirs) DeleteAll() error {
	for _, p := range ad.Folders() {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}
