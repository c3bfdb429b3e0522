package daemon_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldline/doorsync/internal/daemon"
)

// ExampleInboxWatcher demonstrates basic usage of the InboxWatcher.
func ExampleInboxWatcher() {
	// Create a temporary inbox with one inspection directory
	tmpDir, err := os.MkdirTemp("", "inbox-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	inspDir := filepath.Join(tmpDir, "insp-42")
	if err := os.MkdirAll(inspDir, 0755); err != nil {
		log.Fatal(err)
	}

	// Create and start watcher
	iw, err := daemon.NewInboxWatcher()
	if err != nil {
		log.Fatal(err)
	}
	defer iw.Stop()

	if err := iw.Start(tmpDir); err != nil {
		log.Fatal(err)
	}

	// Drop a photo into the inspection directory
	photo := filepath.Join(inspDir, "hinge.jpg")
	if err := os.WriteFile(photo, []byte("jpeg bytes"), 0644); err != nil {
		log.Fatal(err)
	}

	// Wait for the event
	select {
	case event := <-iw.Events():
		fmt.Printf("%s queued for inspection %s\n", filepath.Base(event.Path), event.InspectionID)
	case <-time.After(2 * time.Second):
		log.Fatal("no event received")
	}

	// Output:
	// hinge.jpg queued for inspection insp-42
}

// ExampleInboxWatcher_stop demonstrates clean shutdown.
func ExampleInboxWatcher_stop() {
	tmpDir, err := os.MkdirTemp("", "inbox-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	iw, err := daemon.NewInboxWatcher()
	if err != nil {
		log.Fatal(err)
	}

	if err := iw.Start(tmpDir); err != nil {
		log.Fatal(err)
	}

	// Monitor both events and errors until the channels close
	done := make(chan bool)
	go func() {
		for {
			select {
			case event, ok := <-iw.Events():
				if !ok {
					done <- true
					return
				}
				fmt.Printf("Event: %s\n", event.Path)

			case err, ok := <-iw.Errors():
				if !ok {
					done <- true
					return
				}
				fmt.Printf("Error: %v\n", err)
			}
		}
	}()

	// Stop watcher (closes channels)
	iw.Stop()
	<-done

	fmt.Println("Watcher stopped")
	// Output:
	// Watcher stopped
}
