package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownDomainID is returned when a domain id doesn't belong to any known chain
	ErrUnknownDomainID = errors.New("unknown domain id")
	// ErrUnknownDomainName is returned when a chain name doesn't belong to any known domain
	ErrUnknownDomainName = errors.New("unknown domain name")
)

// Domain identifies a chain in the messaging protocol. It's not the EVM chain id.
type Domain uint32

// DomainType tells apart mainnets, testnets and local chains
type DomainType uint8

const (
	Mainnet DomainType = iota
	Testnet
	LocalTestChain
)

func (t DomainType) String() string {
	switch t {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	case LocalTestChain:
		return "localtestchain"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

const (
	Ethereum                 Domain = 0x657468
	Goerli                   Domain = 5
	Kovan                    Domain = 3000
	Polygon                  Domain = 0x706f6c79
	Mumbai                   Domain = 80001
	Avalanche                Domain = 0x61766178
	Fuji                     Domain = 43113
	Arbitrum                 Domain = 0x617262
	ArbitrumRinkeby          Domain = 0x61722d72
	ArbitrumGoerli           Domain = 421613
	Optimism                 Domain = 0x6f70
	OptimismKovan            Domain = 0x6f702d6b
	OptimismGoerli           Domain = 420
	BinanceSmartChain        Domain = 0x627363
	BinanceSmartChainTestnet Domain = 0x62732d74
	Celo                     Domain = 0x63656c6f
	Alfajores                Domain = 1000
	MoonbaseAlpha            Domain = 0x6d6f2d61
	Moonbeam                 Domain = 0x6d6f2d6d
	Zksync2Testnet           Domain = 280
	Test1                    Domain = 13371
	Test2                    Domain = 13372
	Test3                    Domain = 13373
)

type domainInfo struct {
	name       string
	domainType DomainType
}

var domains = map[Domain]domainInfo{
	Ethereum:                 {"ethereum", Mainnet},
	Goerli:                   {"goerli", Testnet},
	Kovan:                    {"kovan", Testnet},
	Polygon:                  {"polygon", Mainnet},
	Mumbai:                   {"mumbai", Testnet},
	Avalanche:                {"avalanche", Mainnet},
	Fuji:                     {"fuji", Testnet},
	Arbitrum:                 {"arbitrum", Mainnet},
	ArbitrumRinkeby:          {"arbitrumrinkeby", Testnet},
	ArbitrumGoerli:           {"arbitrumgoerli", Testnet},
	Optimism:                 {"optimism", Mainnet},
	OptimismKovan:            {"optimismkovan", Testnet},
	OptimismGoerli:           {"optimismgoerli", Testnet},
	BinanceSmartChain:        {"bsc", Mainnet},
	BinanceSmartChainTestnet: {"bsctestnet", Testnet},
	Celo:                     {"celo", Mainnet},
	Alfajores:                {"alfajores", Testnet},
	MoonbaseAlpha:            {"moonbasealpha", Testnet},
	Moonbeam:                 {"moonbeam", Mainnet},
	Zksync2Testnet:           {"zksync2testnet", Testnet},
	Test1:                    {"test1", LocalTestChain},
	Test2:                    {"test2", LocalTestChain},
	Test3:                    {"test3", LocalTestChain},
}

var domainsByName = func() map[string]Domain {
	res := make(map[string]Domain, len(domains))
	for d, info := range domains {
		res[info.name] = d
	}
	return res
}()

// DomainFromID returns the known domain with the given id
func DomainFromID(id uint32) (Domain, error) {
	d := Domain(id)
	if _, ok := domains[d]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownDomainID, id)
	}
	return d, nil
}

// DomainFromName returns the domain of a chain given its name. Names are case insensitive.
func DomainFromName(name string) (Domain, error) {
	d, ok := domainsByName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownDomainName, name)
	}
	return d, nil
}

// DomainIDFromName returns the id of the domain of a chain given its name
func DomainIDFromName(name string) (uint32, error) {
	d, err := DomainFromName(name)
	if err != nil {
		return 0, err
	}
	return uint32(d), nil
}

// NameFromDomainID returns the chain name of a domain id
func NameFromDomainID(id uint32) (string, error) {
	d, err := DomainFromID(id)
	if err != nil {
		return "", err
	}
	return d.Name(), nil
}

// Name returns the lowercase chain name, or an empty string for unknown domains
func (d Domain) Name() string {
	return domains[d].name
}

// Type returns whether the domain is a mainnet, a testnet or a local chain
func (d Domain) Type() DomainType {
	return domains[d].domainType
}

func (d Domain) String() string {
	if info, ok := domains[d]; ok {
		return info.name
	}
	return fmt.Sprintf("unknown(%d)", uint32(d))
}

// Domains returns all the known domains sorted by id
func Domains() []Domain {
	res := make([]Domain, 0, len(domains))
	for d := range domains {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
