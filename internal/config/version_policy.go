package config

import "strings"

// CurrentConfigVersion is the schema version written by new projects.
const CurrentConfigVersion = "1"

var SupportedConfigVersions = []string{CurrentConfigVersion}

func IsSupportedConfigVersion(v string) bool {
	return contains(SupportedConfigVersions, v)
}

func SupportedConfigVersionsCSV() string {
	return strings.Join(SupportedConfigVersions, ", ")
}
