package version

import "fmt"

// Version represents a version of ht
type Version struct {
	major int
	minor int
	patch int
}

func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// Current returns current version of ht
func Current() *Version {
	return &Version{major: 1, minor: 0, patch: 0}
}
