package jenkins

// Subset of the Jenkins JSON API consumed by the selector.

type Job struct {
	Builds []BuildMeta `json:"builds"`
}

type BuildMeta struct {
	Number int `json:"number"`
}

type Build struct {
	Number    int        `json:"number"`
	Artifacts []Artifact `json:"artifacts"`
}

type Artifact struct {
	FileName     string `json:"fileName"`
	RelativePath string `json:"relativePath"`
}
