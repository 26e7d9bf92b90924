package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIDStable(t *testing.T) {
	a := ChunkID("Section 1 text", "acts/ipc.json")
	b := ChunkID("Section 1 text", "acts/ipc.json")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestChunkIDNormalizesWhitespace(t *testing.T) {
	a := ChunkID("  Section 1 text \n", "acts/ipc.json")
	b := ChunkID("Section 1 text", "acts/ipc.json")
	assert.Equal(t, a, b)
}

func TestChunkIDDistinguishesSource(t *testing.T) {
	a := ChunkID("Section 1 text", "acts/ipc.json")
	b := ChunkID("Section 1 text", "acts/bns.json")
	assert.NotEqual(t, a, b)
}

func TestChunkIDDistinguishesContent(t *testing.T) {
	a := ChunkID("Section 1 text", "acts/ipc.json")
	b := ChunkID("Section 2 text", "acts/ipc.json")
	assert.NotEqual(t, a, b)
}

func TestDocumentIDDeterministic(t *testing.T) {
	a := DocumentID("dataset/ipc.json")
	b := DocumentID("dataset/ipc.json")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DocumentID("dataset/bns.json"))
}

func TestQueryParamsValidate(t *testing.T) {
	params := QueryParams{Question: "What is Section 302?"}
	assert.Nil(t, params.Validate())

	empty := QueryParams{}
	errs := empty.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "Question")
}
