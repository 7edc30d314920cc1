package application

import (
	"dailybet/domain/interfaces"
	"dailybet/domain/services"
)

// ledgerFor builds a ledger bound to uow
func ledgerFor(uow UnitOfWork) interfaces.LedgerService {
	return services.NewLedgerService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
}

func lineServiceFor(uow UnitOfWork) interfaces.LineService {
	return services.NewLineService(uow.DailyLineRepository(), uow.BetRepository(), ledgerFor(uow), uow.EventBus())
}

func settlementServiceFor(uow UnitOfWork) interfaces.SettlementService {
	return services.NewSettlementService(uow.BetRepository(), ledgerFor(uow))
}

func withdrawalServiceFor(uow UnitOfWork) interfaces.WithdrawalService {
	return services.NewWithdrawalService(uow.WithdrawalRepository(), uow.UserRepository(), ledgerFor(uow), uow.EventBus())
}

func accountServiceFor(uow UnitOfWork) interfaces.AccountService {
	return services.NewAccountService(uow.UserRepository())
}
