package describe

// Descriptor field keys in emission order.
const (
	LocationFieldKeyConstant = "location"
	BranchFieldKeyConstant   = "branch"
	CommitFieldKeyConstant   = "commit"
	IsDirtyFieldKeyConstant  = "is_dirty"
	RemoteFieldKeyConstant   = "remote"
	SemverFieldKeyConstant   = "semver"
	StageFieldKeyConstant    = "stage"
	VersionFieldKeyConstant  = "version"
)

// RepositoryDescriptor summarizes the state of a repository working copy.
//
// Every field is always populated; a field whose true value could not be
// determined carries its configured fallback token instead.
type RepositoryDescriptor struct {
	Location string `json:"location"`
	Branch   string `json:"branch"`
	Commit   string `json:"commit"`
	IsDirty  string `json:"is_dirty"`
	Remote   string `json:"remote"`
	Semver   string `json:"semver"`
	Stage    string `json:"stage"`
	Version  string `json:"version"`
}

// DescriptorField pairs a descriptor key with its value.
type DescriptorField struct {
	Key   string
	Value string
}

// OrderedFields returns the descriptor fields in their fixed emission order.
func (descriptor RepositoryDescriptor) OrderedFields() []DescriptorField {
	return []DescriptorField{
		{Key: LocationFieldKeyConstant, Value: descriptor.Location},
		{Key: BranchFieldKeyConstant, Value: descriptor.Branch},
		{Key: CommitFieldKeyConstant, Value: descriptor.Commit},
		{Key: IsDirtyFieldKeyConstant, Value: descriptor.IsDirty},
		{Key: RemoteFieldKeyConstant, Value: descriptor.Remote},
		{Key: SemverFieldKeyConstant, Value: descriptor.Semver},
		{Key: StageFieldKeyConstant, Value: descriptor.Stage},
		{Key: VersionFieldKeyConstant, Value: descriptor.Version},
	}
}
