package mailbox

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailbox struct {
	attachments map[string]string // attachmentID -> base64url payload
	fetchErr    error
	fetched     []string
}

func (f *fakeMailbox) ListMessageIDs(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (f *fakeMailbox) GetMessage(context.Context, string) (*Message, error) {
	return nil, nil
}

func (f *fakeMailbox) GetAttachment(_ context.Context, _, attachmentID string) (string, error) {
	f.fetched = append(f.fetched, attachmentID)
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	data, ok := f.attachments[attachmentID]
	if !ok {
		return "", errors.New("no such attachment")
	}
	return data, nil
}

func (f *fakeMailbox) ListLabels(context.Context) ([]Label, error) {
	return nil, nil
}

func b64url(content string) string {
	return base64.URLEncoding.EncodeToString([]byte(content))
}

func TestLocatePDFs_NestedTreeDepthFirst(t *testing.T) {
	mb := &fakeMailbox{attachments: map[string]string{
		"att-1": b64url("first"),
		"att-2": b64url("second"),
	}}
	l := NewLocator(mb, nil)

	msg := &Message{
		ID: "m1",
		Payload: &Part{
			MimeType: "multipart/mixed",
			Parts: []*Part{
				{
					MimeType: "multipart/alternative",
					Parts: []*Part{
						{MimeType: "text/plain"},
						{Filename: "a.pdf", MimeType: "application/pdf", AttachmentID: "att-1"},
					},
				},
				{Filename: "b.pdf", MimeType: "application/octet-stream", AttachmentID: "att-2"},
			},
		},
	}

	got, err := l.LocatePDFs(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.pdf", got[0].Filename)
	assert.Equal(t, []byte("first"), got[0].Content)
	assert.Equal(t, "b.pdf", got[1].Filename)
	assert.Equal(t, []byte("second"), got[1].Content)
}

func TestLocatePDFs_MatchRules(t *testing.T) {
	mb := &fakeMailbox{attachments: map[string]string{"att": b64url("x")}}
	l := NewLocator(mb, nil)

	tests := []struct {
		name string
		part *Part
		want int
	}{
		{"uppercase extension", &Part{Filename: "SCAN.PDF", AttachmentID: "att"}, 1},
		{"mime type only", &Part{MimeType: "application/pdf", AttachmentID: "att"}, 1},
		{"neither", &Part{Filename: "notes.txt", MimeType: "text/plain", AttachmentID: "att"}, 0},
		{"pdf but no attachment id", &Part{Filename: "inline.pdf", MimeType: "application/pdf"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{ID: "m", Payload: &Part{Parts: []*Part{tt.part}}}
			got, err := l.LocatePDFs(context.Background(), msg)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestLocatePDFs_MissingFilenameGetsDefault(t *testing.T) {
	mb := &fakeMailbox{attachments: map[string]string{"att": b64url("x")}}
	l := NewLocator(mb, nil)

	msg := &Message{ID: "m", Payload: &Part{Parts: []*Part{
		{MimeType: "application/pdf", AttachmentID: "att"},
	}}}

	got, err := l.LocatePDFs(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "attachment.pdf", got[0].Filename)
}

func TestLocatePDFs_PaddingVariants(t *testing.T) {
	mb := &fakeMailbox{attachments: map[string]string{
		"padded":   base64.URLEncoding.EncodeToString([]byte("ab")), // "YWI="
		"unpadded": base64.RawURLEncoding.EncodeToString([]byte("ab")),
	}}
	l := NewLocator(mb, nil)

	for _, id := range []string{"padded", "unpadded"} {
		msg := &Message{ID: "m", Payload: &Part{Parts: []*Part{
			{Filename: "f.pdf", AttachmentID: id},
		}}}
		got, err := l.LocatePDFs(context.Background(), msg)
		require.NoError(t, err, id)
		require.Len(t, got, 1, id)
		assert.Equal(t, []byte("ab"), got[0].Content, id)
	}
}

func TestLocatePDFs_FetchErrorAbortsMessage(t *testing.T) {
	mb := &fakeMailbox{fetchErr: errors.New("quota exceeded")}
	l := NewLocator(mb, nil)

	msg := &Message{ID: "m", Payload: &Part{Parts: []*Part{
		{Filename: "f.pdf", AttachmentID: "att"},
	}}}

	got, err := l.LocatePDFs(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"f.pdf"`)
	assert.Nil(t, got)
}

func TestLocatePDFs_NilPayload(t *testing.T) {
	l := NewLocator(&fakeMailbox{}, nil)

	got, err := l.LocatePDFs(context.Background(), &Message{ID: "m"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = l.LocatePDFs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
