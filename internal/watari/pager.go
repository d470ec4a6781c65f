package watari

import (
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/term"
)

// RunPager displays lines in a scrollable TUI when stdout is a TTY and the
// content does not fit the terminal. Otherwise it prints the lines plainly.
func RunPager(title string, lines []string) error {
	fd := int(os.Stdout.Fd())

	if !term.IsTerminal(fd) {
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}

	// 2 lines of buffer for the border
	_, height, err := term.GetSize(fd)
	if err == nil && len(lines) <= height-2 {
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}

	app := tview.NewApplication()

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	textView.SetBorder(true).SetTitle(" " + title + " ")

	// ANSIWriter translates escape sequences into tview color tags
	fmt.Fprint(tview.ANSIWriter(textView), strings.Join(lines, "\n"))

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]Scroll: ↑/↓ or j/k, PgUp/PgDn, g/G for start/end. Quit: 'q' or Esc.[white]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, true).
		AddItem(footer, 1, 0, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyCtrlQ:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				app.Stop()
			case 'j':
				row, _ := textView.GetScrollOffset()
				textView.ScrollTo(row+1, 0)
			case 'k':
				if row, _ := textView.GetScrollOffset(); row > 0 {
					textView.ScrollTo(row-1, 0)
				}
			case 'g':
				textView.ScrollToBeginning()
			case 'G':
				textView.ScrollToEnd()
			default:
				return event
			}
			return nil
		}
		return event
	})

	if err := app.SetRoot(flex, true).SetFocus(textView).Run(); err != nil {
		return fmt.Errorf("pager execution failed: %w", err)
	}
	return nil
}
