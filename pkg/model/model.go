package model

// SentencePair is one validated sentence/translation pair from a
// generation batch. Both fields are non-empty after trimming; pairs
// that fail this are dropped during parsing and never stored.
type SentencePair struct {
	SwissSentence        string `json:"swiss_sentence"`
	ReferenceTranslation string `json:"reference_translation"`
}

// Exercise is one of the six practice items in a lesson. It is derived
// from a sentence batch on every request and never cached.
type Exercise struct {
	ID                   int    `json:"id"`
	SwissSentence        string `json:"swiss_sentence"`
	TranslationHint      string `json:"translation_hint"`
	ReferenceTranslation string `json:"reference_translation"`
}
