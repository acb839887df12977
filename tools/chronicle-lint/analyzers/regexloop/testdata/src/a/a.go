package a

import "regexp"

func bad(names []string) {
	for _, name := range names {
		re := regexp.MustCompile(`\d+`) // want "regexp.MustCompile inside loop body"
		_ = re.FindAllString(name, -1)
	}
}

func badCompile(names []string) {
	for _, name := range names {
		re, _ := regexp.Compile(`\d+`) // want "regexp.Compile inside loop body"
		_ = re.FindAllString(name, -1)
	}
}

func good(names []string) {
	re := regexp.MustCompile(`\d+`)
	for _, name := range names {
		_ = re.FindAllString(name, -1)
	}
}

var yearPattern = regexp.MustCompile(`-?\d+`)

func goodGlobal(names []string) {
	for _, name := range names {
		_ = yearPattern.FindAllString(name, -1)
	}
}
