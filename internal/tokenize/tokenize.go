// Package tokenize holds the word tokenizer and stopword list shared by the
// TF-IDF model, the keyword extractor and the summarizer.
package tokenize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	wordPattern     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Sentences returns the terminated sentences of text, trimmed. Text after the
// last terminator is dropped.
func Sentences(text string) []string {
	found := sentencePattern.FindAllString(text, -1)
	out := make([]string, 0, len(found))
	for _, s := range found {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Words lowercases text and returns its words in order, stopwords included.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the words of text that can carry meaning: stopwords and
// single-letter words are dropped.
func Terms(text string) []string {
	raw := Words(text)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// IsStopword reports whether the lowercase word w is a common English word.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any", "are",
		"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but", "by",
		"can", "could", "did", "do", "does", "doing", "don", "down", "during", "each", "else", "even",
		"ever", "every", "few", "for", "from", "further", "get", "gets", "got", "had", "has", "have",
		"having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "however", "i",
		"if", "in", "into", "is", "it", "it's", "its", "itself", "just", "let", "like", "made", "make",
		"many", "may", "me", "might", "more", "most", "much", "must", "my", "myself", "never", "no", "nor",
		"not", "now", "of", "off", "often", "on", "once", "one", "only", "or", "other", "our", "ours",
		"ourselves", "out", "over", "own", "per", "quite", "rather", "really", "same", "she", "should",
		"since", "so", "some", "still", "such", "than", "that", "that's", "the", "their", "theirs", "them",
		"themselves", "then", "there", "these", "they", "this", "those", "through", "thus", "to", "too",
		"under", "until", "up", "upon", "us", "use", "used", "using", "very", "via", "was", "we", "well",
		"were", "what", "when", "where", "whether", "which", "while", "who", "whom", "why", "will", "with",
		"within", "without", "would", "yet", "you", "your", "yours", "yourself", "yourselves",
		"i'm", "i've", "we're", "you're", "can't", "won't", "didn't", "doesn't", "isn't", "don't",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
