package common

// CurrentVersion is the version of comex being built
var CurrentVersion = Version{
	Major:  0,
	Minor:  3,
	Patch:  0,
	Suffix: "dev",
}
