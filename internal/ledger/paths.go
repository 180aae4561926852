package ledger

import "strings"

// OwnedFiles returns the image paths exclusively referenced by this record:
// the stored person image, the stored garment image, and the result image
// when one exists. Deleting the record means deleting these files.
func (g Generation) OwnedFiles() []string {
	paths := make([]string, 0, 3)
	for _, p := range []string{g.PersonImagePath, g.GarmentImagePath, g.ResultImagePath} {
		if strings.TrimSpace(p) != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
