// Package models defines core data structures for cards, queries, and search results.
package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Card represents a Magic card. The JSON layout follows the Scryfall card schema,
// which is what both the corpus dataset and the name resolution service produce.
// Cards are immutable after corpus load.
type Card struct {
	ID            string     `json:"id"`
	OracleID      string     `json:"oracle_id,omitempty"`
	Name          string     `json:"name"`
	ManaCost      string     `json:"mana_cost,omitempty"`
	CMC           float64    `json:"cmc,omitempty"`
	TypeLine      string     `json:"type_line,omitempty"`
	OracleText    string     `json:"oracle_text,omitempty"`
	Keywords      []string   `json:"keywords,omitempty"`
	ColorIdentity []string   `json:"color_identity"`
	ScryfallURI   string     `json:"scryfall_uri,omitempty"`
	ImageURIs     *ImageURIs `json:"image_uris,omitempty"`
	CardFaces     []CardFace `json:"card_faces,omitempty"`
}

// CardFace is one face of a multi-faced card (DFCs, split cards).
type CardFace struct {
	Name       string     `json:"name"`
	OracleText string     `json:"oracle_text,omitempty"`
	TypeLine   string     `json:"type_line,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains card image URLs in various sizes.
type ImageURIs struct {
	Small  string `json:"small,omitempty"`
	Normal string `json:"normal,omitempty"`
	Large  string `json:"large,omitempty"`
}

// ImageURL returns the normal-size image URL for the card. Multi-faced cards
// without top-level images fall back to the first face. Empty when no image exists.
func (c *Card) ImageURL() string {
	if c.ImageURIs != nil && c.ImageURIs.Normal != "" {
		return c.ImageURIs.Normal
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs != nil && face.ImageURIs.Normal != "" {
			return face.ImageURIs.Normal
		}
	}
	return ""
}

// SearchText returns the textual representation the corpus embeddings were built
// from: the oracle text with the card's own name replaced by "this card", followed
// by the card's keywords.
func (c *Card) SearchText() string {
	text := c.OracleText
	if c.Name != "" {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(c.Name) + `\b`)
		if err == nil {
			text = re.ReplaceAllString(text, "this card")
		}
	}
	if len(c.Keywords) > 0 {
		text = text + " " + strings.Join(c.Keywords, " ")
	}
	return strings.TrimSpace(text)
}

func (c *Card) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}
