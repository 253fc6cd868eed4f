package ci

import "testing"

func lookupMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDetectFrom_KnownVendors(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{"GITHUB_ACTIONS": "true", "CI": "true"}, "GitHub Actions"},
		{map[string]string{"GITLAB_CI": "true", "CI": "true"}, "GitLab"},
		{map[string]string{"TRAVIS": "true"}, "Travis CI"},
		{map[string]string{"TF_BUILD": "True"}, "Team Foundation Server"},
		{map[string]string{"TASK_ID": "a", "RUN_ID": "0"}, "TaskCluster"},
		{map[string]string{"CI_NAME": "codeship", "CI": "true"}, "CodeShip"},
		{map[string]string{"CONTINUOUS_INTEGRATION": "1"}, "Generic CI"},
		{map[string]string{"BUILD_NUMBER": "17"}, "Generic CI"},
	}
	for _, tc := range cases {
		p, ok := DetectFrom(lookupMap(tc.env))
		if !ok {
			t.Fatalf("expected a platform for %v", tc.env)
		}
		if p.String() != tc.want {
			t.Fatalf("env %v: want %s, got %s", tc.env, tc.want, p)
		}
	}
}

func TestDetectFrom_NoMatch(t *testing.T) {
	env := map[string]string{"HOME": "/root", "TASK_ID": "only-one", "CI_NAME": ""}
	if p, ok := DetectFrom(lookupMap(env)); ok {
		t.Fatalf("expected no platform, got %s", p)
	}
}

func TestDetectFrom_SetButEmpty(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want Platform
	}{
		{map[string]string{"CI": ""}, Generic},
		{map[string]string{"GITLAB_CI": "", "CI": ""}, GitLab},
		{map[string]string{"TASK_ID": "", "RUN_ID": ""}, TaskCluster},
	}
	for _, tc := range cases {
		p, ok := DetectFrom(lookupMap(tc.env))
		if !ok || p != tc.want {
			t.Fatalf("env %v: want %s, got %v (%v)", tc.env, tc.want, p, ok)
		}
	}
}

func TestDetectFrom_ExactValueMatch(t *testing.T) {
	env := map[string]string{"CI_NAME": "Codeship"}
	if p, ok := DetectFrom(lookupMap(env)); ok {
		t.Fatalf("value match must be exact, got %s", p)
	}
}

func TestDetectFrom_FirstMatchWins(t *testing.T) {
	env := map[string]string{"JENKINS_URL": "http://ci", "HUDSON_URL": "http://ci"}
	p, ok := DetectFrom(lookupMap(env))
	if !ok || p != Jenkins {
		t.Fatalf("expected Jenkins, got %v (%v)", p, ok)
	}
}

func TestPlatformNamesCoverTable(t *testing.T) {
	for _, f := range Fingerprints {
		if f.Platform.String() == "unknown" {
			t.Fatalf("platform %d has no canonical name", f.Platform)
		}
	}
	if Platform(0).String() != "unknown" {
		t.Fatalf("zero platform should be unknown")
	}
}
