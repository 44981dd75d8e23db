package assemble

import (
	"regexp"
	"sort"
	"strconv"

	"talkdoc/internal/validate"
)

var (
	imageRef      = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
	screenshotNum = regexp.MustCompile(`screenshot[_-]?(\d+)`)
)

// ValidateScreenshots checks the screenshot references in an assembled
// document: the same image used twice is an error, gaps or disorder in the
// numbering are a warning.
func ValidateScreenshots(markdown string) *validate.Result {
	r := validate.NewResult()

	seen := make(map[string]bool)
	var numbers []int
	for _, match := range imageRef.FindAllStringSubmatch(markdown, -1) {
		path := match[1]
		if seen[path] {
			r.Errorf("screenshot %q referenced more than once", path)
			continue
		}
		seen[path] = true

		if m := screenshotNum.FindStringSubmatch(path); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				numbers = append(numbers, n)
			}
		}
	}

	if len(numbers) > 0 {
		ordered := sort.IntsAreSorted(numbers)
		sort.Ints(numbers)
		sequential := numbers[0] == 1
		for i := 1; i < len(numbers); i++ {
			if numbers[i] != numbers[i-1]+1 {
				sequential = false
				break
			}
		}
		if !ordered || !sequential {
			r.Warnf("screenshot numbering is not sequential from 1")
		}
	}

	return r
}
