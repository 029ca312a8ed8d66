package export

import (
	"os"

	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"
)

// Archive bundles the export tree at root into dest. The archive format is
// chosen from the extension of dest, e.g. ".zip" or ".tar.gz".
func Archive(root, dest string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", root)
	}
	if err := archiver.Archive([]string{root}, dest); err != nil {
		return errors.Wrapf(err, "archive %s", root)
	}
	return nil
}
