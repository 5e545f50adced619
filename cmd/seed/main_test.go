package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-assistant-be/internal/entity"
)

func TestReadCorpus(t *testing.T) {
	input := "\ufefftitle,text,extra\n" +
		"قانون العمل,\"مدة الإشعار ثلاثون يوماً\",x\n" +
		",\n" +
		"قانون الإيجار,يلتزم المستأجر\n" +
		"short\n" +
		"قانون التجارة,السجل التجاري\n"

	var batches [][]*entity.LegalDocument
	err := readCorpus(strings.NewReader(input), 2, func(docs []*entity.LegalDocument) error {
		batches = append(batches, docs)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, batches, 2)
	require.Len(t, batches[0], 2)
	require.Len(t, batches[1], 1)
	assert.Equal(t, "قانون العمل", batches[0][0].Title)
	assert.Equal(t, "مدة الإشعار ثلاثون يوماً", batches[0][0].Text)
	assert.Equal(t, "قانون الإيجار", batches[0][1].Title)
	assert.Equal(t, "قانون التجارة", batches[1][0].Title)
}

func TestReadCorpus_BadHeader(t *testing.T) {
	err := readCorpus(strings.NewReader("name,body\na,b\n"), 10, func([]*entity.LegalDocument) error { return nil })
	assert.ErrorContains(t, err, "header must contain title and text columns")
}
