package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubS3 struct {
	putIn    *awss3.PutObjectInput
	putErr   error
	listOut  []*awss3.ListObjectsV2Output
	listCall int
	deleted  []string
}

func (s *stubS3) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	s.putIn = in
	if s.putErr != nil {
		return nil, s.putErr
	}
	return &awss3.PutObjectOutput{}, nil
}

func (s *stubS3) ListObjectsV2(_ context.Context, _ *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	out := s.listOut[s.listCall]
	s.listCall++
	return out, nil
}

func (s *stubS3) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	s.deleted = append(s.deleted, *in.Key)
	return &awss3.DeleteObjectOutput{}, nil
}

func TestPutSetsPublicACLAndCacheControl(t *testing.T) {
	stub := &stubS3{}
	store := &ObjectStore{client: stub, bucket: "assets", region: "us-east-1", publicBaseURL: "https://cdn.campusmatch.io"}

	url, err := store.Put(context.Background(), "institutions/x/primary/x_q80_og_image.jpg", "image/jpeg", []byte{1, 2})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.campusmatch.io/institutions/x/primary/x_q80_og_image.jpg", url)
	require.NotNil(t, stub.putIn)
	assert.Equal(t, types.ObjectCannedACLPublicRead, stub.putIn.ACL)
	assert.Equal(t, cacheControl, *stub.putIn.CacheControl)
	assert.Equal(t, "image/jpeg", *stub.putIn.ContentType)
}

func TestPutFallsBackToBucketURL(t *testing.T) {
	store := &ObjectStore{client: &stubS3{}, bucket: "assets", region: "us-west-2"}

	url, err := store.Put(context.Background(), "k.jpg", "image/jpeg", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://assets.s3.us-west-2.amazonaws.com/k.jpg", url)
}

func TestPutEmptyKeyRejected(t *testing.T) {
	store := &ObjectStore{client: &stubS3{}, bucket: "assets"}
	_, err := store.Put(context.Background(), "  ", "image/jpeg", nil)
	assert.Error(t, err)
}

func TestPutWrapsClientError(t *testing.T) {
	store := &ObjectStore{client: &stubS3{putErr: errors.New("denied")}, bucket: "assets"}
	_, err := store.Put(context.Background(), "k.jpg", "image/jpeg", nil)
	assert.ErrorContains(t, err, "denied")
}

func TestListFollowsContinuationTokens(t *testing.T) {
	stub := &stubS3{
		listOut: []*awss3.ListObjectsV2Output{
			{
				Contents:              []types.Object{{Key: aws.String("a.jpg")}, {Key: aws.String("b.jpg")}},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("next"),
			},
			{
				Contents:    []types.Object{{Key: aws.String("c.jpg")}},
				IsTruncated: aws.Bool(false),
			},
		},
	}
	store := &ObjectStore{client: stub, bucket: "assets"}

	keys, err := store.List(context.Background(), "institutions/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, keys)
	assert.Equal(t, 2, stub.listCall)
}

func TestDelete(t *testing.T) {
	stub := &stubS3{}
	store := &ObjectStore{client: stub, bucket: "assets"}

	require.NoError(t, store.Delete(context.Background(), "old.jpg"))
	assert.Equal(t, []string{"old.jpg"}, stub.deleted)
}
