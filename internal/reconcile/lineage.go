package reconcile

// Latest returns the first entry of a most-recent-first version list.
func Latest(versions []string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	return versions[0], true
}

// Previous returns the version issued immediately before target, given the
// month's versions ordered most-recent-first. It reports false when target is
// the oldest version or is not in the list.
func Previous(versions []string, target string) (string, bool) {
	for i, v := range versions {
		if v != target {
			continue
		}
		if i+1 < len(versions) {
			return versions[i+1], true
		}
		return "", false
	}
	return "", false
}

// Contains reports whether target is one of versions.
func Contains(versions []string, target string) bool {
	for _, v := range versions {
		if v == target {
			return true
		}
	}
	return false
}
