package search

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/matst80/slask-listings/pkg/types"
)

type FreeTextIndex struct {
	mu        sync.RWMutex
	tokenizer *Tokenizer
	Trie      *Trie
	TokenMap  map[Token]*roaring.Bitmap
	docTokens map[types.ListingId][]Token
}

type FreeTextIndexOptions struct {
	Tokenizer *Tokenizer
}

func DefaultFreeTextIndexOptions() FreeTextIndexOptions {
	return FreeTextIndexOptions{
		Tokenizer: &Tokenizer{MaxTokens: 128},
	}
}

func NewFreeTextIndex(opts FreeTextIndexOptions) *FreeTextIndex {
	if opts.Tokenizer == nil {
		opts.Tokenizer = DefaultFreeTextIndexOptions().Tokenizer
	}
	return &FreeTextIndex{
		tokenizer: opts.Tokenizer,
		Trie:      NewTrie(),
		TokenMap:  make(map[Token]*roaring.Bitmap),
		docTokens: make(map[types.ListingId][]Token),
	}
}

// AddDocument indexes the text of a listing, replacing earlier text for the id.
func (i *FreeTextIndex) AddDocument(id types.ListingId, text ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.removeUnsafe(id)
	tokens := make([]Token, 0)
	seen := map[Token]struct{}{}
	for _, property := range text {
		i.tokenizer.Tokenize(property, func(token Token, _ string, _ int, _ bool) bool {
			if _, ok := seen[token]; ok {
				return true
			}
			seen[token] = struct{}{}
			tokens = append(tokens, token)
			if l, ok := i.TokenMap[token]; ok {
				l.Add(id)
			} else {
				i.TokenMap[token] = roaring.BitmapOf(id)
				i.Trie.Insert(token)
			}
			return true
		})
	}
	i.docTokens[id] = tokens
}

func (i *FreeTextIndex) RemoveDocument(id types.ListingId) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.removeUnsafe(id)
}

func (i *FreeTextIndex) removeUnsafe(id types.ListingId) {
	tokens, ok := i.docTokens[id]
	if !ok {
		return
	}
	for _, token := range tokens {
		if ids, ok := i.TokenMap[token]; ok {
			ids.Remove(id)
			if ids.IsEmpty() {
				delete(i.TokenMap, token)
				i.Trie.Remove(token)
			}
		}
	}
	delete(i.docTokens, id)
}

// Match returns the listings containing every query word, where a word also
// matches indexed words it is a prefix of. A query without words returns nil,
// meaning no restriction.
func (i *FreeTextIndex) Match(query string) *types.ItemList {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var res *roaring.Bitmap
	i.tokenizer.Tokenize(query, func(token Token, _ string, _ int, _ bool) bool {
		matching := roaring.New()
		for _, word := range i.Trie.FindMatches(token) {
			if ids, ok := i.TokenMap[word]; ok {
				matching.Or(ids)
			}
		}
		if res == nil {
			res = matching
		} else {
			res.And(matching)
		}
		return !res.IsEmpty()
	})
	if res == nil {
		return nil
	}
	return types.FromBitmap(res)
}

func (i *FreeTextIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docTokens)
}
