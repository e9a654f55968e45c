// The main package for the imagepipe executable.
package main

import (
	"github.com/campusmatch/image-pipeline/cmd"
)

func main() {
	cmd.Execute()
}
