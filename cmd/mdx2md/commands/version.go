package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdx2md/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Println(version.String())
	return nil
}
