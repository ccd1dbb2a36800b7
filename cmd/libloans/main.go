// Command libloans runs the library loan service.
package main

import (
	"fmt"
	"log"

	"github.com/patric-chuzhbe/libloans/internal/app"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func buildInfo() string {
	return fmt.Sprintf(
		"Build version: %s\nBuild date: %s\nBuild commit: %s",
		buildVersion,
		buildDate,
		buildCommit,
	)
}

func main() {
	fmt.Println(buildInfo())

	application, err := app.New()
	if err != nil {
		log.Fatal(err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		application.Close()
		log.Fatal(err)
	}
}
