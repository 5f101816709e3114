// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/api/utils"
	"github.com/dominant-strategies/go-quai-stake/ledger/lppool"
	"github.com/dominant-strategies/go-quai-stake/runtime"
	"github.com/dominant-strategies/go-quai-stake/staking"
)

// LP serves the LP-token pool.
type LP struct {
	svc *staking.Service
}

func NewLP(svc *staking.Service) *LP {
	return &LP{svc: svc}
}

func (l *LP) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	var info *lppool.PoolInfo
	if err := l.svc.Read(func(env *runtime.Env) error {
		var err error
		info, err = l.svc.LP().GetPoolInfo()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (l *LP) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req, "address")
	if err != nil {
		return err
	}
	var info *lppool.UserInfo
	if err := l.svc.Read(func(env *runtime.Env) error {
		var err error
		info, err = l.svc.LP().GetUserInfo(addr, env.Block())
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (l *LP) handleGetLockInfo(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req, "address")
	if err != nil {
		return err
	}
	var info *lppool.LockInfo
	if err := l.svc.Read(func(env *runtime.Env) error {
		var err error
		info, err = l.svc.LP().GetLockInfo(addr, env.Block())
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (l *LP) handleGetRewardBalance(w http.ResponseWriter, _ *http.Request) error {
	var balance *big.Int
	if err := l.svc.Read(func(env *runtime.Env) error {
		var err error
		balance, err = l.svc.LP().GetRewardBalance()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"rewardBalance": hexOrDecimal(balance)})
}

func (l *LP) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body DepositRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := l.svc.LPDeposit(body.Staker, amountOf(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (l *LP) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := l.svc.LPWithdraw(body.Staker, amountOf(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (l *LP) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, paid, err := l.svc.LPClaim(body.Staker)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, paid))
}

func (l *LP) handleEmergencyWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, amount, err := l.svc.LPEmergencyWithdraw(body.Staker)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, amount))
}

func (l *LP) handleSetRewardPerBlock(w http.ResponseWriter, req *http.Request) error {
	var body RateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := l.svc.LPSetRewardPerBlock(body.Caller, amountOf(body.Rate))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (l *LP) handleFundRewards(w http.ResponseWriter, req *http.Request) error {
	var body FundRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := l.svc.LPFundRewards(body.Funder, amountOf(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (l *LP) handleUpdatePeriods(w http.ResponseWriter, req *http.Request) error {
	var body PeriodsRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := l.svc.LPUpdatePeriods(body.Caller, body.First, body.Second)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (l *LP) handleWithdrawExcess(w http.ResponseWriter, req *http.Request) error {
	var body SweepRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := l.svc.LPWithdrawExcessReward(body.Caller, body.To, amountOf(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

// Mount attaches the LP pool routes under pathPrefix.
func (l *LP) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetInfo))
	sub.Path("/reward-balance").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetRewardBalance))
	sub.Path("/accounts/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetAccount))
	sub.Path("/accounts/{address}/lock").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetLockInfo))

	sub.Path("/deposits").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleDeposit))
	sub.Path("/withdrawals").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleWithdraw))
	sub.Path("/claims").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleClaim))
	sub.Path("/emergency-withdrawals").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleEmergencyWithdraw))

	sub.Path("/admin/reward-per-block").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleSetRewardPerBlock))
	sub.Path("/admin/fund").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleFundRewards))
	sub.Path("/admin/periods").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleUpdatePeriods))
	sub.Path("/admin/withdraw-excess").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(l.handleWithdrawExcess))
}
