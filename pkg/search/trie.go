package search

import "slices"

type Trie struct {
	Root *Node
}

type Node struct {
	Children map[rune]*Node
	IsLeaf   bool
}

func NewTrie() *Trie {
	return &Trie{
		Root: &Node{
			Children: make(map[rune]*Node),
		},
	}
}

func (t *Trie) Insert(word Token) {
	node := t.Root
	for _, r := range word {
		if _, ok := node.Children[r]; !ok {
			node.Children[r] = &Node{
				Children: make(map[rune]*Node),
			}
		}
		node = node.Children[r]
	}
	node.IsLeaf = true
}

// Remove unmarks a word. Empty branches are left in place.
func (t *Trie) Remove(word Token) {
	if node := t.find(word); node != nil {
		node.IsLeaf = false
	}
}

func (t *Trie) find(word Token) *Node {
	node := t.Root
	for _, r := range word {
		next, ok := node.Children[r]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

func (t *Trie) Search(word Token) bool {
	node := t.find(word)
	return node != nil && node.IsLeaf
}

// FindMatches returns every word starting with prefix, sorted.
func (t *Trie) FindMatches(prefix Token) []Token {
	node := t.find(prefix)
	if node == nil {
		return nil
	}
	matches := t.findMatches(node, []rune(prefix), nil)
	slices.Sort(matches)
	return matches
}

func (t *Trie) findMatches(node *Node, prefix []rune, matches []Token) []Token {
	if node.IsLeaf {
		matches = append(matches, Token(prefix))
	}
	for r, child := range node.Children {
		matches = t.findMatches(child, append(prefix, r), matches)
	}
	return matches
}
