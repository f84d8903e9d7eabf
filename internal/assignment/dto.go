package assignment

import (
	errors "github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/core/common/validation"
)

// ChangeDTO names one ledger entry; it is built from the request path.
type ChangeDTO struct {
	UserID string
	List   string
	ItemID string
}

func (d ChangeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required()
	v.Field("list", d.List).Required().OneOf(errors.ErrCodeInvalidList, Lists...)
	v.Field("item_id", d.ItemID).Required()
	return v.Validate()
}
