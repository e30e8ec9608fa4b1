package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("list_id", "list-1", Required, MaxLength(10)).
		Field("job_id", uuid.NewString(), UUID).
		Field("page", 3, Positive)
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
	assert.NoError(t, ValidateAndReturnError(v))

	v = NewValidator().
		Field("list_id", "  ", Required).
		Field("name", "Ñameñameñame", MaxLength(5)).
		Field("job_id", "nope", UUID).
		Field("page", 0, Positive)
	assert.Len(t, v.Errors(), 4)
	assert.True(t, IsValidation(v.Error()))
	assert.Contains(t, v.ErrorMessage(), "list_id")
	assert.Contains(t, v.ErrorMessage(), "at most 5 characters")

	err := ValidateAndReturnError(v)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMaxLengthCountsRunes(t *testing.T) {
	assert.Nil(t, MaxLength(5)("name", "Melón"))
	assert.NotNil(t, MaxLength(4)("name", "Melón"))
	assert.Nil(t, MaxLength(1)("name", 42), "non-strings are ignored")
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, ToStatus(nil))
	assert.Equal(t, codes.NotFound, status.Code(ToStatus(NewAppError("NOT_FOUND", "job", ErrNotFound))))
	assert.Equal(t, codes.InvalidArgument, status.Code(ToStatus(WrapError(ErrValidation, "page"))))
	assert.Equal(t, codes.Internal, status.Code(ToStatus(ErrDatabase)))
}
