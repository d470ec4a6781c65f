package watari

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// interactiveMu ensures only one prompt reads stdin at a time.
var interactiveMu sync.Mutex

// colorPrinter is satisfied by gookit's *color.Theme and *color.Style, so
// prompts can take any of the package styles.
type colorPrinter interface {
	Printf(format string, a ...any)
	Println(a ...any)
}

func cPrintf(p colorPrinter, format string, a ...any) {
	if p == nil {
		fmt.Printf(format, a...)
		return
	}
	p.Printf(format, a...)
}

func cPrintln(p colorPrinter, a ...any) {
	if p == nil {
		fmt.Println(a...)
		return
	}
	p.Println(a...)
}

// askForConfirmation prompts the user and defaults to 'yes'.
func askForConfirmation(p colorPrinter, format string, a ...any) bool {
	interactiveMu.Lock()
	defer interactiveMu.Unlock()

	reader := bufio.NewReader(os.Stdin)
	fullPrompt := fmt.Sprintf(format, a...) + " [Y/n]: "

	for {
		cPrintf(p, "%s", fullPrompt)
		response, err := reader.ReadString('\n')
		if err != nil {
			return false // Ctrl+D defaults to "no"
		}
		response = strings.ToLower(strings.TrimSpace(response))

		if response == "y" || response == "yes" || response == "" {
			return true
		}
		if response == "n" || response == "no" {
			return false
		}
		cPrintln(colWarn, "Invalid input.")
	}
}

// ParseSelectionIndices parses a comma-separated list of numbers, or negative
// numbers for exclusion. Returns 0-based indices and whether the list excluded.
func ParseSelectionIndices(input string, max int) ([]int, bool, error) {
	if input == "" {
		return nil, false, nil
	}

	indices := make(map[int]bool)
	exclude := false

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idxStr := part
		if strings.HasPrefix(part, "-") {
			exclude = true
			idxStr = strings.TrimPrefix(part, "-")
		}

		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, false, fmt.Errorf("invalid number: %s", part)
		}
		if idx <= 0 || idx > max {
			return nil, false, fmt.Errorf("number out of range (1-%d): %d", max, idx)
		}
		indices[idx-1] = true
	}

	var result []int
	if exclude {
		for i := 0; i < max; i++ {
			if !indices[i] {
				result = append(result, i)
			}
		}
	} else {
		for idx := range indices {
			result = append(result, idx)
		}
		sort.Ints(result)
	}

	return result, exclude, nil
}

// AskForSelection prompts the user to pick items from a numbered list.
// 'a'/'y'/empty select everything, 'n'/'c' cancels, otherwise a
// comma-separated list of numbers or -numbers is parsed.
func AskForSelection(prompt string, count int) ([]int, bool) {
	interactiveMu.Lock()
	defer interactiveMu.Unlock()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		colArrow.Print("-> ")
		colNote.Print(prompt + " ")

		if !scanner.Scan() {
			return nil, false
		}

		lower := strings.ToLower(strings.TrimSpace(scanner.Text()))

		if lower == "" || lower == "y" || lower == "yes" || lower == "a" || lower == "all" {
			indices := make([]int, count)
			for i := range indices {
				indices[i] = i
			}
			return indices, true
		}
		if lower == "n" || lower == "no" || lower == "c" || lower == "cancel" {
			return nil, false
		}

		indices, _, err := ParseSelectionIndices(strings.TrimSpace(scanner.Text()), count)
		if err != nil {
			colError.Printf("Error: %v\n", err)
			continue
		}
		if len(indices) == 0 {
			colWarn.Println("No items selected.")
			continue
		}
		return indices, true
	}
}
