package repoargs

// RepositoryName - имена репозиториев, под которыми они регистрируются в uow.
type RepositoryName string

const (
	CustomerRepoName RepositoryName = "customer"
	ProductRepoName  RepositoryName = "product"
	OrderRepoName    RepositoryName = "order"
	LogRepoName      RepositoryName = "log"
)
