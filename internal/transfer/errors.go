package transfer

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid transfer request")
	ErrFeeAssetNotInTransfer  = errors.New("fee asset not part of the transfer")
	ErrFeeAssetNotFungible    = errors.New("fee asset is not fungible")
	ErrCapabilityUnsupported  = errors.New("runtime capability not supported")
	ErrNoTransferBackend      = errors.New("no known transfer backend")
	ErrBeneficiaryNotInterior = errors.New("beneficiary must be an interior location")
	ErrUnknownAssetDecimals   = errors.New("cannot determine asset decimals")
)
