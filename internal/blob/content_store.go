// Package blob reads message bodies out of the object store. Content is
// written by the ingestion pipeline, one JSON object per message id.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"messagesapp/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrContentNotFound reports a message with no stored body.
var ErrContentNotFound = errors.New("message content not found")

type ContentStore interface {
	GetMessageContent(ctx context.Context, messageID string) (*model.MessageContent, error)
}

type contentStore struct {
	s3Client *s3.Client
	bucket   string
}

func NewContentStore(s3Client *s3.Client, bucket string) ContentStore {
	return &contentStore{s3Client: s3Client, bucket: bucket}
}

func (s *contentStore) GetMessageContent(ctx context.Context, messageID string) (*model.MessageContent, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(messageID + ".json"),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("message %s: %w", messageID, ErrContentNotFound)
		}
		return nil, fmt.Errorf("fetching content blob for message %s: %w", messageID, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading content blob for message %s: %w", messageID, err)
	}

	var content model.MessageContent
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("decoding content blob for message %s: %w", messageID, err)
	}
	return &content, nil
}
