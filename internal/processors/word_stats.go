package processors

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taskdeck/taskdeck-api/internal/task"
)

// WordStatsType is the registered name of the text statistics processor.
const WordStatsType = "word_stats"

// WordStats returns a provider that reports line, word and character counts
// for an opaque text payload.
func WordStats() task.Provider {
	return task.NewProvider(WordStatsType, countWords)
}

func countWords(ctx context.Context, input string) (string, error) {
	lines := 0
	if input != "" {
		lines = strings.Count(input, "\n") + 1
	}
	words := len(strings.Fields(input))
	chars := utf8.RuneCountInString(input)
	return fmt.Sprintf("Lines: %d\nWords: %d\nCharacters: %d", lines, words, chars), nil
}
