package config

// DefaultMandatoryVars are the vars that depend on the deployment, so
// they have no sensible default and must be set on a config file or as
// env vars (MSGRELAYER_<name>)
const DefaultMandatoryVars = `
# OriginDomain is the name of the chain the messages are dispatched from
OriginDomain = "ethereum"
# OriginURL is the RPC provider URL of the origin chain
OriginURL = "http://localhost:8545"
# MailboxAddr is the address of the mailbox contract on the origin chain
MailboxAddr = "0x0000000000000000000000000000000000000000"
# MerkleTreeHookAddr is the address of the merkle tree hook of the mailbox
MerkleTreeHookAddr = "0x0000000000000000000000000000000000000000"
# InitialBlockNum is the block where the merkle tree hook was deployed
InitialBlockNum = 0
`

// DefaultVars are not config fields, they are used to avoid repetition in
// config files
const DefaultVars = `
PathRWData = "/tmp/msgrelayer"
OriginURLSyncChunkSize = 100
`

// DefaultValues is the default configuration
const DefaultValues = `
# This is the default configuration for the msgrelayer node

[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

[Common]
  OriginDomain = "{{OriginDomain}}"
  OriginURL = "{{OriginURL}}"

[MessageSync]
  # DBPath is the path of the database where the leaves and messages are stored
  DBPath = "{{PathRWData}}/messagesync.sqlite"
  # BlockFinality of the blocks queried to the origin chain. Reorgs are not handled
  BlockFinality = "FinalizedBlock"
  # InitialBlockNum is the first block queried when syncing from scratch
  InitialBlockNum = {{InitialBlockNum}}
  MailboxAddr = "{{MailboxAddr}}"
  MerkleTreeHookAddr = "{{MerkleTreeHookAddr}}"
  # SyncBlockChunkSize is the amount of blocks queried on each eth_getLogs
  SyncBlockChunkSize = {{OriginURLSyncChunkSize}}
  # RetryAfterErrorPeriod is the time that will be waited when an unexpected error happens before retry
  RetryAfterErrorPeriod = "1s"
  # MaxRetryAttemptsAfterError is the maximum number of consecutive attempts that will happen before panicking.
  # Any number smaller than zero will be considered as unlimited retries
  MaxRetryAttemptsAfterError = -1
  # WaitForNewBlocksPeriod is the time waited when the synchronizer has reached the latest block
  WaitForNewBlocksPeriod = "3s"

[MerkleTree]
  # DBPath is the path of the database where the roots are stored
  DBPath = "{{PathRWData}}/merkletree.sqlite"
  # Height of the tree, it must match the merkle tree hook
  Height = 32
  # WaitForNewLeavesPeriod is the time waited between polls to the message sync
  WaitForNewLeavesPeriod = "1s"
  # BatchSize is the max amount of leaves ingested at once
  BatchSize = 1000

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 5576
  # ReadTimeout is the HTTP server read timeout
  # check net/http.server.ReadTimeout and net/http.server.ReadHeaderTimeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  # check net/http.server.WriteTimeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10
`
