// Package ci identifies the continuous integration platform a process runs
// on, based on environment variables that only that platform's runners set.
//
// The same table drives build-time collection and runtime detection, so a
// program can compare the platform it was built on with the one it runs on:
//
//	built := buildinfo.CIPlatform
//	if p, ok := ci.Detect(); ok {
//		fmt.Println("running on", p)
//	}
package ci

import "os"

// Platform is one of the known CI vendors.
type Platform int

const (
	Travis Platform = iota + 1
	Circle
	GitLab
	AppVeyor
	Codeship
	Drone
	Magnum
	Semaphore
	Jenkins
	Bamboo
	TFS
	TeamCity
	Buildkite
	Hudson
	TaskCluster
	GoCD
	BitBucket
	GitHubActions
	Generic
)

var names = map[Platform]string{
	Travis:        "Travis CI",
	Circle:        "CircleCI",
	GitLab:        "GitLab",
	AppVeyor:      "AppVeyor",
	Codeship:      "CodeShip",
	Drone:         "Drone",
	Magnum:        "Magnum",
	Semaphore:     "Semaphore",
	Jenkins:       "Jenkins",
	Bamboo:        "Bamboo",
	TFS:           "Team Foundation Server",
	TeamCity:      "TeamCity",
	Buildkite:     "Buildkite",
	Hudson:        "Hudson",
	TaskCluster:   "TaskCluster",
	GoCD:          "GoCD",
	BitBucket:     "BitBucket",
	GitHubActions: "GitHub Actions",
	Generic:       "Generic CI",
}

// String returns the canonical vendor name.
func (p Platform) String() string {
	if n, ok := names[p]; ok {
		return n
	}
	return "unknown"
}

// Condition matches one environment variable. An empty Value only requires
// the variable to be set, even to the empty string; otherwise the value
// must be equal.
type Condition struct {
	Var   string
	Value string
}

// Fingerprint identifies a platform when all of its conditions match.
type Fingerprint struct {
	Platform Platform
	All      []Condition
}

func has(name string) []Condition { return []Condition{{Var: name}} }

// Fingerprints is evaluated in order; the first match wins. Generic
// fallbacks come last because several vendors set them too.
var Fingerprints = []Fingerprint{
	{Travis, has("TRAVIS")},
	{Circle, has("CIRCLECI")},
	{GitLab, has("GITLAB_CI")},
	{AppVeyor, has("APPVEYOR")},
	{Drone, has("DRONE")},
	{Magnum, has("MAGNUM")},
	{Semaphore, has("SEMAPHORE")},
	{Jenkins, has("JENKINS_URL")},
	{Bamboo, has("bamboo_planKey")},
	{TFS, has("TF_BUILD")},
	{TeamCity, has("TEAMCITY_VERSION")},
	{Buildkite, has("BUILDKITE")},
	{Hudson, has("HUDSON_URL")},
	{GoCD, has("GO_PIPELINE_LABEL")},
	{BitBucket, has("BITBUCKET_COMMIT")},
	{GitHubActions, has("GITHUB_ACTIONS")},
	{TaskCluster, []Condition{{Var: "TASK_ID"}, {Var: "RUN_ID"}}},
	{Codeship, []Condition{{Var: "CI_NAME", Value: "codeship"}}},
	{Generic, has("CI")},
	{Generic, has("CONTINUOUS_INTEGRATION")},
	{Generic, has("BUILD_NUMBER")},
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Matches reports whether every condition of f holds under lookup.
func (f Fingerprint) Matches(lookup LookupFunc) bool {
	if len(f.All) == 0 {
		return false
	}
	for _, c := range f.All {
		v, ok := lookup(c.Var)
		if !ok {
			return false
		}
		if c.Value != "" && v != c.Value {
			return false
		}
	}
	return true
}

// DetectFrom returns the first platform whose fingerprint matches lookup.
func DetectFrom(lookup LookupFunc) (Platform, bool) {
	for _, f := range Fingerprints {
		if f.Matches(lookup) {
			return f.Platform, true
		}
	}
	return 0, false
}

// Detect inspects the current process environment.
func Detect() (Platform, bool) { return DetectFrom(os.LookupEnv) }
