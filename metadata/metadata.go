// Package metadata builds the marketplace metadata document of a DePleb.
package metadata

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// DefaultImageBase is where the collection images are hosted.
const DefaultImageBase = "https://storage.googleapis.com/nftcollection/4787035/DogDash/"

// Description is shared by every token in the collection.
const Description = "An NFT collection of 500 degen pleb dogs on the Ethereum Blockchain!"

// Document follows the common marketplace metadata layout.
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ForToken returns the document for token id. An empty base uses
// DefaultImageBase.
func ForToken(id *big.Int, base string) Document {
	if base == "" {
		base = DefaultImageBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return Document{
		Name:        fmt.Sprintf("DePleb #%s", id),
		Description: Description,
		Image:       base + id.String() + ".png",
	}
}

// JSON returns the indented encoding shown in the terminal.
func (d Document) JSON() (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
