package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/favorite --output domain/favorite --outpkg favoritemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/setting --output domain/setting --outpkg settingmock --filename repository_mock.go
