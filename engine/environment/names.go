package environment

// Named accounts, in the order of the chain's signing keys.
const (
	AccountDeployer = "deployer"
	AccountPlayer   = "player"
)

// namedAccounts maps a named account to its index in evm.Chain.Accounts.
var namedAccounts = map[string]int{
	AccountDeployer: 0,
	AccountPlayer:   1,
}
