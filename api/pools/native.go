// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pools exposes the staking pools over REST: read views for the
// dashboard and operation submission endpoints.
package pools

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/dominant-strategies/go-quai-stake/api/utils"
	"github.com/dominant-strategies/go-quai-stake/ledger/native"
	"github.com/dominant-strategies/go-quai-stake/ledger/stakes"
	"github.com/dominant-strategies/go-quai-stake/quai"
	"github.com/dominant-strategies/go-quai-stake/runtime"
	"github.com/dominant-strategies/go-quai-stake/staking"
)

// Native serves the native pool.
type Native struct {
	svc *staking.Service
}

func NewNative(svc *staking.Service) *Native {
	return &Native{svc: svc}
}

func parseAddressVar(req *http.Request, name string) (quai.Address, error) {
	addr, err := quai.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return quai.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func (n *Native) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	var info *native.PoolInfo
	if err := n.svc.Read(func(env *runtime.Env) error {
		var err error
		info, err = n.svc.Native().GetPoolInfo(env.Now())
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (n *Native) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddressVar(req, "address")
	if err != nil {
		return err
	}
	var info *native.UserInfo
	if err := n.svc.Read(func(env *runtime.Env) error {
		var err error
		info, err = n.svc.Native().GetUserInfo(addr, env.Now())
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (n *Native) handleGetAPY(w http.ResponseWriter, req *http.Request) error {
	duration, err := strconv.ParseUint(mux.Vars(req)["duration"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "duration"))
	}
	var bps *big.Int
	if err := n.svc.Read(func(env *runtime.Env) error {
		var err error
		bps, err = n.svc.Native().GetEstimatedAPY(stakes.Duration(duration))
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"apyBps": hexOrDecimal(bps)})
}

func (n *Native) handleGetRewardBalance(w http.ResponseWriter, _ *http.Request) error {
	var balance *big.Int
	if err := n.svc.Read(func(env *runtime.Env) error {
		var err error
		balance, err = n.svc.Native().GetRewardBalance()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"rewardBalance": hexOrDecimal(balance)})
}

func (n *Native) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body DepositRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeDeposit(body.Staker, amountOf(body.Amount), stakes.Duration(body.Duration))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (n *Native) handleRequestWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeRequestWithdraw(body.Staker, amountOf(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (n *Native) handleExecuteWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, paid, err := n.svc.NativeExecuteWithdraw(body.Staker)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, paid))
}

func (n *Native) handleCancelWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeCancelWithdraw(body.Staker)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (n *Native) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, paid, err := n.svc.NativeClaim(body.Staker)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, paid))
}

func (n *Native) handleSetEmissionRate(w http.ResponseWriter, req *http.Request) error {
	var body RateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeSetEmissionRate(body.Caller, amountOf(body.Rate))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (n *Native) handleFundRewards(w http.ResponseWriter, req *http.Request) error {
	var body FundRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeFundRewards(body.Funder, amountOf(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (n *Native) handleUpdatePoolLimit(w http.ResponseWriter, req *http.Request) error {
	var body LimitRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeUpdatePoolLimit(body.Caller, amountOf(body.Limit))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (n *Native) handleUpdatePeriods(w http.ResponseWriter, req *http.Request) error {
	var body PeriodsRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeUpdatePeriods(body.Caller, body.First, body.Second)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func (n *Native) handleWithdrawExcess(w http.ResponseWriter, req *http.Request) error {
	var body SweepRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := n.svc.NativeWithdrawExcessReward(body.Caller, body.To, amountOf(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receiptResponse(receipt, nil))
}

func receiptResponse(receipt *runtime.Receipt, paid *big.Int) *OpResponse {
	return &OpResponse{
		BlockTime:   receipt.Now,
		BlockNumber: receipt.Block,
		GasUsed:     receipt.GasUsed,
		Paid:        hexOrDecimal(paid),
	}
}

// Mount attaches the native pool routes under pathPrefix.
func (n *Native) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(n.handleGetInfo))
	sub.Path("/apy/{duration}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(n.handleGetAPY))
	sub.Path("/reward-balance").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(n.handleGetRewardBalance))
	sub.Path("/accounts/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(n.handleGetAccount))

	sub.Path("/deposits").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleDeposit))
	sub.Path("/withdrawals/request").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleRequestWithdraw))
	sub.Path("/withdrawals/execute").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleExecuteWithdraw))
	sub.Path("/withdrawals/cancel").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleCancelWithdraw))
	sub.Path("/claims").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleClaim))

	sub.Path("/admin/emission-rate").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleSetEmissionRate))
	sub.Path("/admin/fund").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleFundRewards))
	sub.Path("/admin/pool-limit").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleUpdatePoolLimit))
	sub.Path("/admin/periods").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleUpdatePeriods))
	sub.Path("/admin/withdraw-excess").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(n.handleWithdrawExcess))
}
