package tb

import (
	"crypto/sha256"
	"strconv"

	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"

	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

const (
	operatorAccountLabel = "acct:operator"
	limitAccountPrefix   = "acct:limit:"
	reserveTransferPref  = "xfer:reserve:"
	voidTransferPref     = "xfer:void:"
	rereserveTransferPre = "xfer:rereserve:"
	capacityTransferPref = "xfer:capacity:"
)

// id128 deterministically maps a string label to a TigerBeetle Uint128,
// steering clear of the reserved all-zero and all-one values.
func id128(label string) tbtypes.Uint128 {
	sum := sha256.Sum256([]byte(label))
	var raw [16]byte
	copy(raw[:], sum[:16])
	if isZero(raw) || isMax(raw) {
		raw[0] ^= 0x01
	}
	return tbtypes.BytesToUint128(raw)
}

func operatorAccountID() tbtypes.Uint128 {
	return id128(operatorAccountLabel)
}

func limitAccountID(key quota.LimitKey) tbtypes.Uint128 {
	return id128(limitAccountPrefix + string(key))
}

func reserveTransferID(leaseID string, key quota.LimitKey) tbtypes.Uint128 {
	return id128(reserveTransferPref + leaseID + ":" + string(key))
}

func voidTransferID(leaseID string, key quota.LimitKey) tbtypes.Uint128 {
	return id128(voidTransferPref + leaseID + ":" + string(key))
}

func rereserveTransferID(leaseID string, key quota.LimitKey) tbtypes.Uint128 {
	return id128(rereserveTransferPre + leaseID + ":" + string(key))
}

func capacityTransferID(key quota.LimitKey, target uint64) tbtypes.Uint128 {
	return id128(capacityTransferPref + string(key) + ":" + strconv.FormatUint(target, 10))
}

func isZero(raw [16]byte) bool {
	for _, b := range raw {
		if b != 0 {
			return false
		}
	}
	return true
}

func isMax(raw [16]byte) bool {
	for _, b := range raw {
		if b != 0xFF {
			return false
		}
	}
	return true
}
