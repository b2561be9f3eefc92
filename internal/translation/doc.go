// Package translation translates review text through a remote language model.
// A Client never fails its caller: a failed call yields a marked copy of the
// original text so the row can still be written and followed up by hand.
// Backends exist for OpenAI chat completions and Google Gemini.
package translation
